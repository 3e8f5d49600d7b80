package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.Labels.Cleanup)
	assert.Equal(t, 384, cfg.QA.MaxSeqLen)
	assert.Equal(t, "Report Impression", cfg.Batch.ReportColumn)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
labels:
  phrases_dir: /data/phrases
  cleanup: false
qa:
  decoder: Linear
  max_seq_len: 256
  input_names: [input_ids, attention_mask]
batch:
  workers: 0
server:
  port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CLINICAL_SERVER_HOST", "0.0.0.0")
	t.Setenv("CLINICAL_QA_MAX_SEQ_LEN", "128")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/phrases", cfg.Labels.PhrasesDir)
	assert.False(t, cfg.Labels.Cleanup)
	assert.Equal(t, DecoderLinear, cfg.QA.Decoder)
	assert.Equal(t, 128, cfg.QA.MaxSeqLen)
	assert.Equal(t, []string{"input_ids", "attention_mask"}, cfg.QA.InputNames)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
}

func TestLoadRejectsUnknownDecoder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qa:\n  decoder: greedy\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown qa decoder")
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qa: [unclosed"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Labels.Cleanup = false
	cfg.QA.Decoder = DecoderLinear
	cfg.Batch.IDColumn = "Accession"

	require.NoError(t, Save(path, cfg))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "qa.max_seq_len", envKey("CLINICAL_QA_MAX_SEQ_LEN"))
	assert.Equal(t, "labels.phrases_dir", envKey("CLINICAL_LABELS_PHRASES_DIR"))
	assert.Equal(t, "debug", envKey("CLINICAL_DEBUG"))
}
