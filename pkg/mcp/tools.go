package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	// Health check
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check the hub status: learning engine state, resolved transceiver and device count"),
		),
		s.handleGetHealth,
	)

	// Devices
	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List all stored devices with the names of their learned commands"),
		),
		s.handleListDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_device",
			mcp.WithDescription("Get a device and its learned commands"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device id, e.g. living_room_tv"),
			),
		),
		s.handleGetDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("create_device",
			mcp.WithDescription("Create a device. The id is derived from area and name when omitted."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Friendly name, e.g. Living Room TV"),
			),
			mcp.WithString("entity_type",
				mcp.Required(),
				mcp.Description("Platform category"),
				mcp.Enum("light", "switch", "fan", "media_player", "climate", "cover"),
			),
			mcp.WithString("area",
				mcp.Description("Area the device is in"),
			),
			mcp.WithString("broadlink_entity",
				mcp.Description("Remote entity used to learn and send, e.g. remote.living_room"),
			),
			mcp.WithString("device_type",
				mcp.Description("broadlink (default) or smartir"),
				mcp.Enum("broadlink", "smartir"),
			),
			mcp.WithString("device_code",
				mcp.Description("Numeric SmartIR device code"),
			),
			mcp.WithString("icon",
				mcp.Description("Icon override, e.g. mdi:television"),
			),
			mcp.WithString("device_id",
				mcp.Description("Explicit device id"),
			),
		),
		s.handleCreateDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_device",
			mcp.WithDescription("Delete a device and all of its commands"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device id"),
			),
		),
		s.handleDeleteDevice,
	)

	// Commands
	s.mcpServer.AddTool(
		mcp.NewTool("learn_command",
			mcp.WithDescription("Put the device's transceiver into learning mode and store the captured signal. Press the button on the physical remote while this runs."),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("Device id"),
			),
			mcp.WithString("command",
				mcp.Required(),
				mcp.Description("Command name, e.g. power or volume_up"),
			),
			mcp.WithString("kind",
				mcp.Description("Signal kind (default ir)"),
				mcp.Enum("ir", "rf"),
			),
			mcp.WithNumber("timeout_seconds",
				mcp.Description("How long to wait for a signal, per phase for rf (default 30)"),
			),
			mcp.WithBoolean("replace",
				mcp.Description("Overwrite an existing command of the same name (default false)"),
			),
		),
		s.handleLearnCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_command",
			mcp.WithDescription("Store an externally captured payload under a command name"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("Device id"),
			),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Command name"),
			),
			mcp.WithString("payload",
				mcp.Required(),
				mcp.Description("Base64 or hex encoded signal"),
			),
			mcp.WithString("kind",
				mcp.Description("Signal kind (default ir)"),
				mcp.Enum("ir", "rf"),
			),
		),
		s.handleAddCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("test_command",
			mcp.WithDescription("Transmit a stored command through the device's transceiver"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("Device id"),
			),
			mcp.WithString("command",
				mcp.Required(),
				mcp.Description("Command name"),
			),
		),
		s.handleTestCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_command",
			mcp.WithDescription("Delete a command from a device"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("Device id"),
			),
			mcp.WithString("command",
				mcp.Required(),
				mcp.Description("Command name"),
			),
		),
		s.handleDeleteCommand,
	)

	// Generation
	s.mcpServer.AddTool(
		mcp.NewTool("generate_config",
			mcp.WithDescription("Write the entity and helper YAML documents for every enabled device"),
		),
		s.handleGenerateConfig,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_learn_sessions",
			mcp.WithDescription("List recent learn attempts, newest first"),
			mcp.WithString("device_id",
				mcp.Description("Only sessions of this device"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum entries (default 50)"),
			),
		),
		s.handleListSessions,
	)
}
