package generate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/remotehub/pkg/device"
)

// Default output file names.
const (
	DefaultEntitiesFile = "entities.yaml"
	DefaultHelpersFile  = "helpers.yaml"
)

// ErrDanglingHelper indicates generated entity logic references a helper
// that the helpers document does not define.
var ErrDanglingHelper = errors.New("entity references an undefined helper")

// Source supplies the device snapshot.
type Source interface {
	GetAllDevices(forceReload bool) (map[string]device.Device, error)
}

// Skip records a device left out of the generated documents.
type Skip struct {
	DeviceID string `json:"device_id"`
	Reason   string `json:"reason"`
}

// Result summarizes one generation run.
type Result struct {
	Success       bool     `json:"success"`
	EntitiesCount int      `json:"entities_count"`
	HelpersCount  int      `json:"helpers_count"`
	Skipped       []Skip   `json:"skipped,omitempty"`
	Errors        []string `json:"errors,omitempty"`
	EntitiesPath  string   `json:"entities_path,omitempty"`
	HelpersPath   string   `json:"helpers_path,omitempty"`
}

// Generator turns stored devices into entity and helper documents.
type Generator struct {
	source    Source
	outputDir string

	// EntitiesFile and HelpersFile name the outputs inside the output directory.
	EntitiesFile string
	HelpersFile  string

	now func() time.Time
}

// New creates a Generator that reads devices from source and writes into outputDir.
func New(source Source, outputDir string) *Generator {
	return &Generator{
		source:       source,
		outputDir:    outputDir,
		EntitiesFile: DefaultEntitiesFile,
		HelpersFile:  DefaultHelpersFile,
		now:          time.Now,
	}
}

// OutputDir returns the directory the documents are written to.
func (g *Generator) OutputDir() string {
	return g.outputDir
}

// EntitiesPath returns the full path of the entities document.
func (g *Generator) EntitiesPath() string {
	return filepath.Join(g.outputDir, g.EntitiesFile)
}

// HelpersPath returns the full path of the helpers document.
func (g *Generator) HelpersPath() string {
	return filepath.Join(g.outputDir, g.HelpersFile)
}

// GenerateAll snapshots the store, builds both documents and writes them.
// Nothing is written unless both documents build and serialize cleanly.
func (g *Generator) GenerateAll(table CommandTable) (*Result, error) {
	devices, err := g.source.GetAllDevices(true)
	if err != nil {
		return &Result{Errors: []string{err.Error()}}, fmt.Errorf("failed to load devices: %w", err)
	}

	docs, result := g.Build(devices, table)
	if !result.Success {
		return result, fmt.Errorf("%w: %s", ErrDanglingHelper, strings.Join(result.Errors, "; "))
	}

	fail := func(err error) (*Result, error) {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		return result, err
	}

	generatedAt := g.now()
	entities, err := docs.EncodeEntities(generatedAt)
	if err != nil {
		return fail(err)
	}
	helpers, err := docs.EncodeHelpers(generatedAt)
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}
	if err := writePair(g.EntitiesPath(), entities, g.HelpersPath(), helpers); err != nil {
		return fail(err)
	}

	result.EntitiesPath = g.EntitiesPath()
	result.HelpersPath = g.HelpersPath()

	log.Info().
		Int("entities", result.EntitiesCount).
		Int("helpers", result.HelpersCount).
		Int("skipped", len(result.Skipped)).
		Str("entities_path", result.EntitiesPath).
		Str("helpers_path", result.HelpersPath).
		Msg("Configuration generated")

	return result, nil
}

// Build transforms devices into documents without touching disk. Disabled
// devices are ignored and devices missing a required command are skipped.
func (g *Generator) Build(devices map[string]device.Device, table CommandTable) (*Documents, *Result) {
	b := newBuilder(table)

	ids := make([]string, 0, len(devices))
	for id := range devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		d := devices[id]
		if d.ID == "" {
			d.ID = id
		}
		if !d.Enabled {
			continue
		}
		if reason := b.add(d); reason != "" {
			b.result.Skipped = append(b.result.Skipped, Skip{DeviceID: d.ID, Reason: reason})
			log.Warn().Str("device_id", d.ID).Str("reason", reason).Msg("Skipping device")
		}
	}

	return b.finish()
}

// builder accumulates documents for one Build call.
type builder struct {
	table  CommandTable
	docs   *Documents
	result *Result

	lights   map[string]TemplateToggle
	switches map[string]TemplateToggle
	fans     map[string]TemplateFan
	covers   map[string]TemplateCover

	// refs maps helper entity ids used by entity logic to the device using them.
	refs map[string]string
}

func newBuilder(table CommandTable) *builder {
	return &builder{
		table: table,
		docs: &Documents{Helpers: Helpers{
			InputBoolean: map[string]InputBoolean{},
			InputSelect:  map[string]InputSelect{},
		}},
		result:   &Result{},
		lights:   map[string]TemplateToggle{},
		switches: map[string]TemplateToggle{},
		fans:     map[string]TemplateFan{},
		covers:   map[string]TemplateCover{},
		refs:     map[string]string{},
	}
}

// add emits d and returns a skip reason, or "" on success.
func (b *builder) add(d device.Device) string {
	if d.ID == "" || strings.Contains(d.ID, ".") {
		return fmt.Sprintf("device id %q is not a bare identifier", d.ID)
	}

	cmds := availableCommands(d, b.table)
	var reason string

	switch d.EntityType {
	case device.EntityTypeLight:
		reason = b.addToggle(d, cmds, b.lights)
	case device.EntityTypeSwitch:
		reason = b.addToggle(d, cmds, b.switches)
	case device.EntityTypeFan:
		reason = b.addFan(d, cmds)
	case device.EntityTypeCover:
		reason = b.addCover(d, cmds)
	case device.EntityTypeMediaPlayer:
		if d.DeviceType != device.DeviceTypeSmartIR {
			reason = b.addUniversal(d, cmds)
			break
		}
		var entity SmartIREntity
		if entity, reason = smartIREntity(d); reason == "" {
			b.docs.Entities.MediaPlayer = append(b.docs.Entities.MediaPlayer, entity)
		}
	case device.EntityTypeClimate:
		var entity SmartIREntity
		if entity, reason = smartIREntity(d); reason == "" {
			b.docs.Entities.Climate = append(b.docs.Entities.Climate, entity)
		}
	default:
		reason = fmt.Sprintf("unsupported entity type %q", d.EntityType)
	}

	if reason == "" {
		b.result.EntitiesCount++
	}
	return reason
}

func (b *builder) addToggle(d device.Device, cmds commandSet, into map[string]TemplateToggle) string {
	if d.BroadlinkEntity == "" {
		return "no broadlink_entity to send commands through"
	}
	on, off, ok := cmds.power()
	if !ok {
		return "missing power commands (turn_on and turn_off, or power)"
	}

	state := b.stateHelper(d)
	into[d.ID] = TemplateToggle{
		FriendlyName:  d.Name,
		UniqueID:      d.ID,
		IconTemplate:  d.Icon,
		ValueTemplate: isOnTemplate(state),
		TurnOn:        []Action{cmds.send(on), booleanAction("turn_on", state)},
		TurnOff:       []Action{cmds.send(off), booleanAction("turn_off", state)},
	}
	return ""
}

func (b *builder) addCover(d device.Device, cmds commandSet) string {
	if d.BroadlinkEntity == "" {
		return "no broadlink_entity to send commands through"
	}
	open, hasOpen := cmds.first(openNames...)
	closeCmd, hasClose := cmds.first(closeNames...)
	if !hasOpen || !hasClose {
		return "missing cover commands (open and close)"
	}

	state := b.stateHelper(d)
	cover := TemplateCover{
		FriendlyName:  d.Name,
		UniqueID:      d.ID,
		IconTemplate:  d.Icon,
		ValueTemplate: fmt.Sprintf("{{ 'open' if is_state('%s', 'on') else 'closed' }}", state),
		OpenCover:     []Action{cmds.send(open), booleanAction("turn_on", state)},
		CloseCover:    []Action{cmds.send(closeCmd), booleanAction("turn_off", state)},
	}
	if stop, ok := cmds.first(stopNames...); ok {
		cover.StopCover = []Action{cmds.send(stop)}
	}
	b.covers[d.ID] = cover
	return ""
}

func (b *builder) addFan(d device.Device, cmds commandSet) string {
	if d.BroadlinkEntity == "" {
		return "no broadlink_entity to send commands through"
	}
	on, off, ok := cmds.power()
	if !ok {
		return "missing power commands (turn_on and turn_off, or power)"
	}

	state := b.stateHelper(d)
	turnOff := []Action{cmds.send(off), booleanAction("turn_off", state)}
	fan := TemplateFan{
		FriendlyName:  d.Name,
		UniqueID:      d.ID,
		IconTemplate:  d.Icon,
		ValueTemplate: isOnTemplate(state),
		TurnOn:        []Action{cmds.send(on), booleanAction("turn_on", state)},
		TurnOff:       turnOff,
	}

	if speeds := cmds.speeds(); len(speeds) > 0 {
		count := speedCount(speeds)
		speed := b.speedHelper(d, speeds)
		fan.SpeedCount = count
		fan.PercentageTemplate = fmt.Sprintf(
			"{{ ((states('%s') | int(0)) * 100 / %d) | round(0) | int if is_state('%s', 'on') else 0 }}",
			speed, count, state)
		fan.SetPercentage = []Action{{Choose: speedChoices(cmds, speeds, count, speed, state, turnOff)}}
	}

	if forward, reverse, toggle, ok := cmds.directionCommands(); ok {
		direction := b.directionHelper(d)
		fan.DirectionTemplate = fmt.Sprintf("{{ states('%s') }}", direction)
		fan.SetDirection = []Action{selectAction(direction, "{{ direction }}")}
		if toggle != "" {
			fan.SetDirection = append(fan.SetDirection, cmds.send(toggle))
		} else {
			fan.SetDirection = append(fan.SetDirection, Action{Choose: []Choice{
				{Conditions: "{{ direction == 'forward' }}", Sequence: []Action{cmds.send(forward)}},
				{Conditions: "{{ direction == 'reverse' }}", Sequence: []Action{cmds.send(reverse)}},
			}})
		}
	}

	b.fans[d.ID] = fan
	return ""
}

// speedChoices maps a requested percentage onto the populated speed
// ordinals. Each ordinal n covers percentages up to n*100/count.
func speedChoices(cmds commandSet, speeds map[int]string, count int, speed, state string, turnOff []Action) []Choice {
	ordinals := make([]int, 0, len(speeds))
	for n := range speeds {
		ordinals = append(ordinals, n)
	}
	sort.Ints(ordinals)

	choices := []Choice{{Conditions: "{{ percentage == 0 }}", Sequence: turnOff}}
	for _, n := range ordinals {
		choices = append(choices, Choice{
			Conditions: fmt.Sprintf("{{ percentage <= %d }}", (n*100+count-1)/count),
			Sequence: []Action{
				cmds.send(speeds[n]),
				selectAction(speed, strconv.Itoa(n)),
				booleanAction("turn_on", state),
			},
		})
	}
	return choices
}

func (b *builder) addUniversal(d device.Device, cmds commandSet) string {
	if d.BroadlinkEntity == "" {
		return "no broadlink_entity to send commands through"
	}
	on, off, ok := cmds.power()
	if !ok {
		return "missing power commands (turn_on and turn_off, or power)"
	}

	state := b.stateHelper(d)
	commands := map[string][]Action{
		"turn_on":  {cmds.send(on), booleanAction("turn_on", state)},
		"turn_off": {cmds.send(off), booleanAction("turn_off", state)},
	}
	for _, mc := range mediaCommands {
		if name, ok := cmds.first(mc.names...); ok {
			commands[mc.command] = []Action{cmds.send(name)}
		}
	}

	b.docs.Entities.MediaPlayer = append(b.docs.Entities.MediaPlayer, UniversalMediaPlayer{
		Platform:   PlatformUniversal,
		Name:       d.Name,
		UniqueID:   d.ID,
		Children:   []string{},
		Attributes: map[string]string{"state": state},
		Commands:   commands,
	})
	return ""
}

func smartIREntity(d device.Device) (SmartIREntity, string) {
	code, ok := smartIRCode(d.DeviceCode)
	if !ok {
		return SmartIREntity{}, "missing or non-numeric device_code"
	}
	if d.BroadlinkEntity == "" {
		return SmartIREntity{}, "no broadlink_entity for controller_data"
	}
	return SmartIREntity{
		Platform:       PlatformSmartIR,
		Name:           d.Name,
		UniqueID:       d.ID,
		DeviceCode:     code,
		ControllerData: d.BroadlinkEntity,
	}, ""
}

// stateHelper defines <id>_state and returns its entity id.
func (b *builder) stateHelper(d device.Device) string {
	key := d.ID + "_state"
	b.docs.Helpers.InputBoolean[key] = InputBoolean{Name: d.Name + " State", Icon: d.Icon}
	return b.ref("input_boolean", key, d.ID)
}

// speedHelper defines <id>_speed with one option per populated ordinal.
func (b *builder) speedHelper(d device.Device, speeds map[int]string) string {
	ordinals := make([]int, 0, len(speeds))
	for n := range speeds {
		ordinals = append(ordinals, n)
	}
	sort.Ints(ordinals)

	options := make([]string, len(ordinals))
	for i, n := range ordinals {
		options[i] = strconv.Itoa(n)
	}

	key := d.ID + "_speed"
	b.docs.Helpers.InputSelect[key] = InputSelect{Name: d.Name + " Speed", Options: options, Icon: "mdi:fan"}
	return b.ref("input_select", key, d.ID)
}

// directionHelper defines <id>_direction.
func (b *builder) directionHelper(d device.Device) string {
	key := d.ID + "_direction"
	b.docs.Helpers.InputSelect[key] = InputSelect{
		Name:    d.Name + " Direction",
		Options: []string{"forward", "reverse"},
		Icon:    "mdi:rotate-3d-variant",
	}
	return b.ref("input_select", key, d.ID)
}

func (b *builder) ref(domain, key, deviceID string) string {
	entityID := domain + "." + key
	b.refs[entityID] = deviceID
	return entityID
}

// finish assembles the batched platforms and checks every helper reference.
func (b *builder) finish() (*Documents, *Result) {
	e := &b.docs.Entities
	if len(b.lights) > 0 {
		e.Light = []LightPlatform{{Platform: PlatformTemplate, Lights: b.lights}}
	}
	if len(b.switches) > 0 {
		e.Switch = []SwitchPlatform{{Platform: PlatformTemplate, Switches: b.switches}}
	}
	if len(b.fans) > 0 {
		e.Fan = []FanPlatform{{Platform: PlatformTemplate, Fans: b.fans}}
	}
	if len(b.covers) > 0 {
		e.Cover = []CoverPlatform{{Platform: PlatformTemplate, Covers: b.covers}}
	}

	refs := make([]string, 0, len(b.refs))
	for r := range b.refs {
		refs = append(refs, r)
	}
	sort.Strings(refs)
	for _, r := range refs {
		domain, key, _ := strings.Cut(r, ".")
		if !b.docs.Helpers.has(domain, key) {
			b.result.Errors = append(b.result.Errors,
				fmt.Sprintf("device %s references undefined helper %s", b.refs[r], r))
		}
	}

	b.result.HelpersCount = b.docs.Helpers.Count()
	b.result.Success = len(b.result.Errors) == 0
	return b.docs, b.result
}

func isOnTemplate(entityID string) string {
	return fmt.Sprintf("{{ is_state('%s', 'on') }}", entityID)
}

func booleanAction(service, entityID string) Action {
	return Action{Service: "input_boolean." + service, Target: &Target{EntityID: entityID}}
}

func selectAction(entityID, option string) Action {
	return Action{
		Service: "input_select.select_option",
		Target:  &Target{EntityID: entityID},
		Data:    map[string]any{"option": option},
	}
}

// writeTemp writes data to path.tmp and syncs it.
func writeTemp(path string, data []byte) (string, error) {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

// writePair replaces both documents or neither. Both temp files are written
// before either rename; if the second rename fails the first document is put
// back the way it was.
func writePair(entitiesPath string, entities []byte, helpersPath string, helpers []byte) error {
	entitiesTmp, err := writeTemp(entitiesPath, entities)
	if err != nil {
		return fmt.Errorf("failed to write entities: %w", err)
	}
	helpersTmp, err := writeTemp(helpersPath, helpers)
	if err != nil {
		_ = os.Remove(entitiesTmp)
		return fmt.Errorf("failed to write helpers: %w", err)
	}

	previous, readErr := os.ReadFile(entitiesPath)

	if err := os.Rename(entitiesTmp, entitiesPath); err != nil {
		_ = os.Remove(entitiesTmp)
		_ = os.Remove(helpersTmp)
		return fmt.Errorf("failed to replace entities: %w", err)
	}
	if err := os.Rename(helpersTmp, helpersPath); err != nil {
		_ = os.Remove(helpersTmp)
		if restoreErr := restore(entitiesPath, previous, readErr); restoreErr != nil {
			log.Error().Err(restoreErr).Str("path", entitiesPath).Msg("Failed to restore entities after helpers write failed")
		}
		return fmt.Errorf("failed to replace helpers: %w", err)
	}
	return nil
}

// restore puts back the bytes read from path before it was replaced, or
// removes path if it did not exist then.
func restore(path string, previous []byte, readErr error) error {
	if errors.Is(readErr, os.ErrNotExist) {
		return os.Remove(path)
	}
	if readErr != nil {
		return readErr
	}
	tmp, err := writeTemp(path, previous)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
