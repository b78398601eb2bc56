// Package config provides profile management for the hapi-core CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// DefaultProfile is selected when no current profile is recorded
const DefaultProfile = "local"

// Profile is a named connection preset
type Profile struct {
	Name            string `json:"name"`
	Network         string `json:"network"`
	ProviderURL     string `json:"provider_url"`
	ContractAddress string `json:"contract_address,omitempty"` // empty: the network default
	ChainID         uint64 `json:"chain_id,omitempty"`
	AccountID       string `json:"account_id,omitempty"`   // NEAR signer
	KeypairPath     string `json:"keypair_path,omitempty"` // Solana CLI keypair file

	Timeout Duration `json:"timeout"`
	Output  string   `json:"output,omitempty"`
}

// Duration is a time.Duration encoded as a string in JSON
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(dur)
	return nil
}

// ProfileManager loads and stores profiles under <configDir>/profiles
type ProfileManager struct {
	configDir      string
	currentProfile string
	profiles       map[string]*Profile
}

// NewProfileManager creates a manager; configDir defaults to ~/.hapi-core
func NewProfileManager(configDir string) (*ProfileManager, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		configDir = filepath.Join(homeDir, ".hapi-core")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	pm := &ProfileManager{
		configDir: configDir,
		profiles:  make(map[string]*Profile),
	}

	if err := pm.loadProfiles(); err != nil {
		return nil, err
	}

	if err := pm.loadCurrentProfile(); err != nil {
		pm.currentProfile = DefaultProfile
	}

	return pm, nil
}

// ConfigDir returns the managed directory
func (pm *ProfileManager) ConfigDir() string {
	return pm.configDir
}

func (pm *ProfileManager) loadProfiles() error {
	profilesDir := filepath.Join(pm.configDir, "profiles")

	if _, err := os.Stat(profilesDir); os.IsNotExist(err) {
		if err := os.MkdirAll(profilesDir, 0700); err != nil {
			return fmt.Errorf("create profiles dir: %w", err)
		}
		if err := pm.createDefaultProfiles(); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(profilesDir)
	if err != nil {
		return fmt.Errorf("read profiles dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		profile, err := pm.loadProfile(filepath.Join(profilesDir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load profile %s: %v\n", entry.Name(), err)
			continue
		}

		pm.profiles[profile.Name] = profile
	}

	return nil
}

func (pm *ProfileManager) loadProfile(filePath string) (*Profile, error) {
	//nolint:gosec // G304: path comes from the config directory
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if profile.Name == "" {
		profile.Name = strings.TrimSuffix(filepath.Base(filePath), ".json")
	}
	if profile.Network != "" {
		if _, err := types.ParseNetwork(profile.Network); err != nil {
			return nil, err
		}
	}
	if profile.Timeout == 0 {
		profile.Timeout = Duration(30 * time.Second)
	}

	return &profile, nil
}

func (pm *ProfileManager) loadCurrentProfile() error {
	//nolint:gosec // G304: fixed file inside the config directory
	data, err := os.ReadFile(filepath.Join(pm.configDir, "current"))
	if err != nil {
		return err
	}

	pm.currentProfile = strings.TrimSpace(string(data))
	return nil
}

func (pm *ProfileManager) saveCurrentProfile() error {
	return os.WriteFile(filepath.Join(pm.configDir, "current"), []byte(pm.currentProfile), 0600)
}

func (pm *ProfileManager) createDefaultProfiles() error {
	profiles := []*Profile{
		{
			Name:        "local",
			Network:     string(types.NetworkEthereum),
			ProviderURL: "http://localhost:8545",
			ChainID:     31337,
			Timeout:     Duration(30 * time.Second),
		},
		{
			Name:        "sepolia",
			Network:     string(types.NetworkSepolia),
			ProviderURL: "https://rpc.sepolia.org",
			ChainID:     11155111,
			Timeout:     Duration(60 * time.Second),
		},
		{
			Name:        "solana-local",
			Network:     string(types.NetworkSolana),
			ProviderURL: "http://localhost:8899",
			Timeout:     Duration(30 * time.Second),
		},
		{
			Name:        "near",
			Network:     string(types.NetworkNear),
			ProviderURL: "https://rpc.mainnet.near.org",
			Timeout:     Duration(60 * time.Second),
		},
	}

	for _, profile := range profiles {
		if err := pm.SaveProfile(profile); err != nil {
			return err
		}
	}

	pm.currentProfile = DefaultProfile
	return pm.saveCurrentProfile()
}

// GetProfile returns a profile by name
func (pm *ProfileManager) GetProfile(name string) (*Profile, error) {
	profile, exists := pm.profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile not found: %s", name)
	}
	return profile, nil
}

// GetCurrentProfile returns the selected profile
func (pm *ProfileManager) GetCurrentProfile() (*Profile, error) {
	return pm.GetProfile(pm.currentProfile)
}

// CurrentName returns the selected profile name
func (pm *ProfileManager) CurrentName() string {
	return pm.currentProfile
}

// ListProfiles returns profile names, sorted
func (pm *ProfileManager) ListProfiles() []string {
	names := make([]string, 0, len(pm.profiles))
	for name := range pm.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SaveProfile writes a profile to disk
func (pm *ProfileManager) SaveProfile(profile *Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name is required")
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	profilePath := filepath.Join(pm.configDir, "profiles", profile.Name+".json")
	if err := os.WriteFile(profilePath, data, 0600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}

	pm.profiles[profile.Name] = profile
	return nil
}

// SwitchProfile selects a profile and records it
func (pm *ProfileManager) SwitchProfile(name string) error {
	if _, exists := pm.profiles[name]; !exists {
		return fmt.Errorf("profile not found: %s", name)
	}

	pm.currentProfile = name
	return pm.saveCurrentProfile()
}

// DeleteProfile removes a profile other than the current one
func (pm *ProfileManager) DeleteProfile(name string) error {
	if name == pm.currentProfile {
		return fmt.Errorf("cannot delete current profile")
	}

	profilePath := filepath.Join(pm.configDir, "profiles", name+".json")
	if err := os.Remove(profilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete profile file: %w", err)
	}

	delete(pm.profiles, name)
	return nil
}
