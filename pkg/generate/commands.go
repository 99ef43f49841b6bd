package generate

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/urmzd/remotehub/pkg/device"
)

// Command name aliases, tried in order.
var (
	onNames     = []string{"turn_on", "power_on", "on"}
	offNames    = []string{"turn_off", "power_off", "off"}
	toggleNames = []string{"power", "toggle", "power_toggle"}
	openNames   = []string{"open", "open_cover", "up"}
	closeNames  = []string{"close", "close_cover", "down"}
	stopNames   = []string{"stop", "stop_cover"}

	forwardNames = []string{"direction_forward", "fan_direction_forward", "forward"}
	reverseNames = []string{"direction_reverse", "fan_direction_reverse"}
)

// mediaCommands maps universal media player commands to command name aliases.
var mediaCommands = []struct {
	command string
	names   []string
}{
	{"volume_up", []string{"volume_up", "vol_up"}},
	{"volume_down", []string{"volume_down", "vol_down"}},
	{"volume_mute", []string{"volume_mute", "mute"}},
	{"media_play", []string{"play", "media_play"}},
	{"media_pause", []string{"pause", "media_pause"}},
	{"media_play_pause", []string{"play_pause", "media_play_pause"}},
	{"media_stop", []string{"media_stop"}},
	{"media_next_track", []string{"next", "next_track", "media_next_track", "channel_up"}},
	{"media_previous_track", []string{"previous", "prev", "previous_track", "media_previous_track", "channel_down"}},
}

var (
	speedPattern     = regexp.MustCompile(`^(?:fan_)?speed_(\d+|low|medium|high)$`)
	directionPattern = regexp.MustCompile(`(?:^|_)(?:reverse|direction)(?:_|$)`)
	namedSpeeds      = map[string]int{"low": 1, "medium": 2, "high": 3}
)

// commandRef says how to send one command: inline from a stored payload,
// or by name from the transceiver's own table.
type commandRef struct {
	payload     string
	tableDevice string
}

// commandSet is every command available for one device.
type commandSet struct {
	remote string
	refs   map[string]commandRef
}

// availableCommands merges stored payloads with the raw table entries found
// under the device id or name. Stored payloads win on a name clash.
func availableCommands(d device.Device, table CommandTable) commandSet {
	set := commandSet{remote: d.BroadlinkEntity, refs: map[string]commandRef{}}

	key, entries := table.lookup(d.ID, d.Name)
	for name, entry := range entries {
		if entry.IsGroup() {
			if len(entry.Group) > 0 {
				set.refs[name] = commandRef{tableDevice: key}
			}
			for sub, code := range entry.Group {
				if code != "" {
					set.refs[sub] = commandRef{payload: code}
				}
			}
			continue
		}
		if entry.Code != "" {
			set.refs[name] = commandRef{tableDevice: key}
		}
	}

	for name, cmd := range d.Commands {
		if p := cmd.Payload(); p != "" {
			set.refs[name] = commandRef{payload: p}
		}
	}
	return set
}

func (c commandSet) has(name string) bool {
	_, ok := c.refs[name]
	return ok
}

// first returns the first alias that is available.
func (c commandSet) first(names ...string) (string, bool) {
	for _, n := range names {
		if c.has(n) {
			return n, true
		}
	}
	return "", false
}

// sorted returns the available command names in order.
func (c commandSet) sorted() []string {
	names := make([]string, 0, len(c.refs))
	for n := range c.refs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// send builds the remote action that transmits name.
func (c commandSet) send(name string) Action {
	ref := c.refs[name]
	data := map[string]any{}
	if ref.payload != "" {
		data["command"] = "b64:" + ref.payload
	} else {
		data["device"] = ref.tableDevice
		data["command"] = name
	}
	return Action{
		Service: "remote.send_command",
		Target:  &Target{EntityID: c.remote},
		Data:    data,
	}
}

// power resolves the commands used to switch a device on and off. A toggle
// command serves both when dedicated commands are missing.
func (c commandSet) power() (on, off string, ok bool) {
	on, hasOn := c.first(onNames...)
	off, hasOff := c.first(offNames...)
	if hasOn && hasOff {
		return on, off, true
	}
	if toggle, hasToggle := c.first(toggleNames...); hasToggle {
		if !hasOn {
			on = toggle
		}
		if !hasOff {
			off = toggle
		}
		return on, off, true
	}
	return "", "", false
}

// speeds maps populated speed ordinals to the command that selects them.
// Earlier names in sort order win when two names share an ordinal.
func (c commandSet) speeds() map[int]string {
	out := map[int]string{}
	for _, name := range c.sorted() {
		m := speedPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, ok := namedSpeeds[m[1]]
		if !ok {
			v, err := strconv.Atoi(m[1])
			if err != nil || v < 1 {
				continue
			}
			n = v
		}
		if _, taken := out[n]; !taken {
			out[n] = name
		}
	}
	return out
}

// speedCount is the highest populated ordinal.
func speedCount(speeds map[int]string) int {
	count := 0
	for n := range speeds {
		count = max(count, n)
	}
	return count
}

// directionCommands returns the direction commands of a fan. When a
// dedicated forward/reverse pair exists both are returned; otherwise toggle
// is the first reverse or direction style command.
func (c commandSet) directionCommands() (forward, reverse, toggle string, ok bool) {
	forward, hasFwd := c.first(forwardNames...)
	reverse, hasRev := c.first(reverseNames...)
	if hasFwd && hasRev {
		return forward, reverse, "", true
	}
	for _, name := range c.sorted() {
		if directionPattern.MatchString(name) {
			return "", "", name, true
		}
	}
	return "", "", "", false
}

// smartIRCode parses a SmartIR device code.
func smartIRCode(code string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
