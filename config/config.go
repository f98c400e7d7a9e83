package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlServer holds the HTTP server configuration
type TomlServer struct {
	Hostname string `toml:"hostname"`
	Port     int    `toml:"port"`
}

// TomlGemini holds the analysis provider configuration. The API key is
// never read from the file; it comes from the GEMINI_API_KEY environment
// variable.
type TomlGemini struct {
	Model string `toml:"model"`
}

// TomlIdentity is the author identity attached to submitted posts
type TomlIdentity struct {
	Author    string `toml:"author"`
	Handle    string `toml:"handle"`
	AvatarURL string `toml:"avatar_url"`
}

// TomlSpeech holds the speech device settings
type TomlSpeech struct {
	KeepAliveSeconds int    `toml:"keep_alive_seconds"`
	DefaultLang      string `toml:"default_lang"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Server   TomlServer   `toml:"server"`
	Gemini   TomlGemini   `toml:"gemini"`
	Identity TomlIdentity `toml:"identity"`
	Speech   TomlSpeech   `toml:"speech"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *TomlConfig {
	return &TomlConfig{
		Server: TomlServer{
			Hostname: "localhost",
			Port:     3000,
		},
		Gemini: TomlGemini{
			Model: "gemini-2.5-flash",
		},
		Identity: TomlIdentity{
			Author:    "You",
			Handle:    "@citizen",
			AvatarURL: "https://i.pravatar.cc/48?u=current_user",
		},
		Speech: TomlSpeech{
			KeepAliveSeconds: 14,
			DefaultLang:      "en-US",
		},
	}
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}
