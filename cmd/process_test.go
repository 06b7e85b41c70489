package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/collections-automation/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withCampaigns(t *testing.T) {
	t.Helper()
	prevMain, prevCampaigns := mainConfig, campaigns
	t.Cleanup(func() { mainConfig, campaigns = prevMain, prevCampaigns })

	mainConfig = &config.MainConfig{DefaultCampaign: "BPI"}
	campaigns = config.DefaultCampaigns()
}

func TestFindMatch(t *testing.T) {
	withCampaigns(t)
	candidates, err := selectCampaigns()
	require.NoError(t, err)

	tests := []struct {
		file       string
		automation string
		ok         bool
	}{
		{"/in/CURED LIST 01102024.xlsx", config.AutomationCuredList, true},
		{"/in/BPI FOR UPDATE.xlsx", config.AutomationUpdates, true},
		{"/in/bpi new endo jan.xlsx", config.AutomationUploads, true},
		{"/in/random.xlsx", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			m, ok := findMatch(tt.file, candidates)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, "BPI", m.campaign.CampaignCode)
				assert.Equal(t, tt.automation, m.automation)
			}
		})
	}
}

func TestResolveCampaign(t *testing.T) {
	withCampaigns(t)

	c, err := resolveCampaign("")
	require.NoError(t, err)
	assert.Equal(t, "BPI", c.CampaignCode)

	c, err = resolveCampaign("rob_bike")
	require.NoError(t, err)
	assert.Equal(t, "ROB_BIKE", c.CampaignCode)

	_, err = resolveCampaign("ACME")
	assert.ErrorContains(t, err, "unknown campaign")
}

func TestDiscoverInputFiles(t *testing.T) {
	withCampaigns(t)
	in := t.TempDir()
	mainConfig.InputDir = in
	for _, name := range []string{"CURED LIST.xlsx", "extract.csv", "notes.pdf", "~$CURED LIST.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte("x"), 0o644))
	}

	files, err := discoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(in, "CURED LIST.xlsx"), filepath.Join(in, "extract.csv")}, files)

	prev := processFile
	t.Cleanup(func() { processFile = prev })
	processFile = "/elsewhere/one.xlsx"
	files, err = discoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"/elsewhere/one.xlsx"}, files)
}
