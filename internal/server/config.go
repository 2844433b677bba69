package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server    ServerSettings `hcl:"server,block"`
	Game      GameSettings   `hcl:"game,block"`
	Questions *QuestionsFile `hcl:"questions,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains the room defaults applied to every new game
type GameSettings struct {
	StartingChips  int `hcl:"starting_chips,optional"`
	TotalRounds    int `hcl:"total_rounds,optional"`
	MaxPlayers     int `hcl:"max_players,optional"`
	RoomTTLMinutes int `hcl:"room_ttl_minutes,optional"`
}

// QuestionsFile points at a question pack on disk that replaces the
// embedded catalog
type QuestionsFile struct {
	Pack string `hcl:"pack"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			StartingChips: 500,
			TotalRounds:   7,
			MaxPlayers:    7,
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file is not an error; callers get the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Game.StartingChips == 0 {
		config.Game.StartingChips = 500
	}
	if config.Game.TotalRounds == 0 {
		config.Game.TotalRounds = 7
	}
	if config.Game.MaxPlayers == 0 {
		config.Game.MaxPlayers = 7
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.StartingChips < 1 {
		return fmt.Errorf("starting chips must be positive, got %d", c.Game.StartingChips)
	}
	if c.Game.TotalRounds < 1 {
		return fmt.Errorf("total rounds must be positive, got %d", c.Game.TotalRounds)
	}
	if c.Game.MaxPlayers < 1 {
		return fmt.Errorf("max players must be positive, got %d", c.Game.MaxPlayers)
	}
	if c.Game.RoomTTLMinutes < 0 {
		return fmt.Errorf("room TTL must not be negative, got %d", c.Game.RoomTTLMinutes)
	}
	if c.Questions != nil && c.Questions.Pack == "" {
		return fmt.Errorf("questions block requires a pack path")
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
