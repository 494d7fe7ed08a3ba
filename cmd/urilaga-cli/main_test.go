package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rifqialba/urilaga/clientcli"
)

func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile, profile, endpoint, username = "", "", "", ""
	t.Cleanup(func() { cfgFile, profile, endpoint, username = "", "", "", "" })
	for _, key := range []string{"URILAGA_ENDPOINT", "URILAGA_USERNAME", "URILAGA_PROFILE", "URILAGA_CLIENT_CONFIG"} {
		t.Setenv(key, "")
	}
}

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	cfg := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:3000", Username: "Alba", Default: true},
		{Name: "prod", Endpoint: "https://gallery.example", Username: "Aca"},
	}}
	require.NoError(t, cfg.Save(path))
	return path
}

func TestBuildConfig_DefaultProfile(t *testing.T) {
	resetFlags(t)
	cfgFile = writeProfiles(t)

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.Endpoint)
	assert.Equal(t, "Alba", cfg.Username)
}

func TestBuildConfig_Precedence(t *testing.T) {
	resetFlags(t)
	t.Setenv("URILAGA_CLIENT_CONFIG", writeProfiles(t))
	t.Setenv("URILAGA_PROFILE", "prod")
	t.Setenv("URILAGA_USERNAME", "env-user")
	endpoint = "http://flag:3000"

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://flag:3000", cfg.Endpoint)
	assert.Equal(t, "env-user", cfg.Username)
}

func TestBuildConfig_UnknownProfile(t *testing.T) {
	resetFlags(t)
	cfgFile = writeProfiles(t)
	profile = "staging"

	_, err := buildConfig()
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
}

func TestBuildConfig_MissingFiles(t *testing.T) {
	resetFlags(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Endpoint)

	cfgFile = filepath.Join(t.TempDir(), "absent.yaml")
	_, err = buildConfig()
	assert.Error(t, err)

	cfgFile = ""
	profile = "prod"
	_, err = buildConfig()
	assert.Error(t, err)
}

func TestConfigureAdd_NonInteractive(t *testing.T) {
	resetFlags(t)
	cfgFile = writeProfiles(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	flags := configureAddCmd.Flags()
	require.NoError(t, flags.Set("endpoint", server.URL+"/"))
	require.NoError(t, flags.Set("username", "Budi"))
	require.NoError(t, flags.Set("default", "true"))
	assumeYes = true
	t.Cleanup(func() { addEndpoint, addUsername, addDefault, assumeYes = "", "", false, false })

	require.NoError(t, runConfigureAdd(configureAddCmd, []string{"staging"}))

	cfg, err := clientcli.LoadConfigFile(cfgFile)
	require.NoError(t, err)
	require.Len(t, cfg.Profiles, 3)

	p, err := cfg.GetDefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "staging", p.Name)
	assert.Equal(t, server.URL, p.Endpoint)
	assert.Equal(t, "Budi", p.Username)
}

func TestConfigureAdd_RejectsBadEndpoint(t *testing.T) {
	resetFlags(t)
	cfgFile = writeProfiles(t)

	require.NoError(t, configureAddCmd.Flags().Set("endpoint", "gallery.example"))
	assumeYes = true
	t.Cleanup(func() { addEndpoint, assumeYes = "", false })

	err := runConfigureAdd(configureAddCmd, []string{"broken"})
	assert.ErrorIs(t, err, clientcli.ErrInvalidEndpoint)
}
