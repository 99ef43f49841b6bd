package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/remotehub/pkg/device"
	"github.com/urmzd/remotehub/pkg/generate"
	"github.com/urmzd/remotehub/pkg/hub"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetHealthOutput{
		Health:    s.hub.Health(ctx),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices, err := s.hub.ListDevices()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list devices: %s", err)), nil
	}

	infos := make([]DeviceInfo, 0, len(devices))
	for i := range devices {
		infos = append(infos, DeviceToInfo(&devices[i]))
	}

	out := ListDevicesOutput{
		Devices: infos,
		Count:   len(infos),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := s.hub.GetDevice(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("device not found: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(GetDeviceOutput{Device: DeviceToInfo(d)})), nil
}

func (s *Server) handleCreateDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if s.validator != nil {
		if err := s.validator.ValidateDevice(args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	var in CreateDeviceInput
	if err := decodeArgs(args, &in); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := s.hub.CreateDevice(device.Device{
		ID:              in.DeviceID,
		Name:            in.Name,
		EntityType:      in.EntityType,
		DeviceType:      in.DeviceType,
		Area:            in.Area,
		BroadlinkEntity: in.BroadlinkEntity,
		DeviceCode:      in.DeviceCode,
		Icon:            in.Icon,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create device: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(GetDeviceOutput{Device: DeviceToInfo(d)})), nil
}

func (s *Server) handleDeleteDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.hub.DeleteDevice(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete device: %s", err)), nil
	}

	out := StatusOutput{
		Success: true,
		Message: fmt.Sprintf("Device %q deleted", id),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleLearnCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID, err := requiredString(request, "device_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// device_id is a path parameter on the REST side, so the shared schema
	// does not know it.
	args := make(map[string]any, len(request.GetArguments()))
	for k, v := range request.GetArguments() {
		if k != "device_id" {
			args[k] = v
		}
	}
	if s.validator != nil {
		if err := s.validator.ValidateLearnRequest(args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	var in LearnCommandInput
	if err := decodeArgs(args, &in); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.hub.Learn(ctx, hub.LearnRequest{
		DeviceID: deviceID,
		Command:  in.Command,
		Kind:     in.Kind,
		Timeout:  time.Duration(in.TimeoutSeconds * float64(time.Second)),
		Replace:  in.Replace,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to learn command: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(LearnCommandOutput{Result: res})), nil
}

func (s *Server) handleAddCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID, err := requiredString(request, "device_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := requiredString(request, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := requiredString(request, "payload")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, _ := request.GetArguments()["kind"].(string)

	if err := s.hub.AddCommand(deviceID, name, payload, kind); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add command: %s", err)), nil
	}

	out := StatusOutput{
		Success: true,
		Message: fmt.Sprintf("Command %q stored on %q", name, deviceID),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleTestCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID, err := requiredString(request, "device_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := requiredString(request, "command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.hub.TestCommand(ctx, deviceID, name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send command: %s", err)), nil
	}

	out := StatusOutput{
		Success: true,
		Message: fmt.Sprintf("Command %q sent to %q", name, deviceID),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleDeleteCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID, err := requiredString(request, "device_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := requiredString(request, "command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.hub.DeleteCommand(deviceID, name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete command: %s", err)), nil
	}

	out := StatusOutput{
		Success: true,
		Message: fmt.Sprintf("Command %q removed from %q", name, deviceID),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGenerateConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.hub.Generate(ctx)
	if err != nil {
		if errors.Is(err, generate.ErrDanglingHelper) && res != nil {
			return mcp.NewToolResultError(formatJSON(GenerateOutput{Result: res})), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate configuration: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(GenerateOutput{Result: res})), nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	deviceID, _ := args["device_id"].(string)
	limit := 0
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	sessions, err := s.hub.Sessions(ctx, deviceID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %s", err)), nil
	}

	out := ListSessionsOutput{
		Sessions: sessions,
		Count:    len(sessions),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

// decodeArgs converts validated tool arguments into a typed input.
func decodeArgs(args map[string]any, out any) error {
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
