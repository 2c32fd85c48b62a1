package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `
owners:
  - name: office
    cidrs: [192.168.0.0/16]
  - name: lab
    cidrs: [192.168.1.0/24]
  - name: dns
    cidrs: [8.8.8.8/32, 8.8.4.4]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// keep a developer's own config out of the way
	t.Setenv("HOME", t.TempDir())

	var (
		out bytes.Buffer
		cmd = newRootCmd()
	)

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestMatchCmd(t *testing.T) {
	rulesFile := writeFile(t, "rules.yaml", sampleRules)

	out, err := execute(t, "--rules", rulesFile, "match", "192.168.1.1", "192.168.2.1", "8.8.4.4", "1.1.1.1")

	require.NoError(t, err)
	assert.Equal(t, ""+
		"192.168.1.1\toffice,lab\n"+
		"192.168.2.1\toffice\n"+
		"8.8.4.4\tdns\n"+
		"1.1.1.1\t\n",
		out,
	)
}

func TestMatchCmd_BadAddr(t *testing.T) {
	rulesFile := writeFile(t, "rules.yaml", sampleRules)

	_, err := execute(t, "--rules", rulesFile, "match", "192.168.1")

	require.Error(t, err)
}

func TestMatchCmd_NoRules(t *testing.T) {
	_, err := execute(t, "match", "192.168.1.1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rules file")
}

func TestMatchCmd_RulesFromEnv(t *testing.T) {
	rulesFile := writeFile(t, "rules.yaml", sampleRules)
	t.Setenv("SUBNET_MATCH_RULES", rulesFile)

	out, err := execute(t, "match", "8.8.8.8")

	require.NoError(t, err)
	assert.Equal(t, "8.8.8.8\tdns\n", out)
}

func TestMatchCmd_RulesFromConfig(t *testing.T) {
	rulesFile := writeFile(t, "rules.yaml", sampleRules)
	configFile := writeFile(t, "config.yaml", "rules: "+rulesFile+"\nlog-level: debug\n")

	out, err := execute(t, "--config", configFile, "match", "192.168.200.1")

	require.NoError(t, err)
	assert.Equal(t, "192.168.200.1\toffice\n", out)
}

func TestMatchCmd_MissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "match", "10.0.0.1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestDumpCmd(t *testing.T) {
	rulesFile := writeFile(t, "rules.yaml", sampleRules)

	out, err := execute(t, "--rules", rulesFile, "dump")

	require.NoError(t, err)
	assert.Equal(t, ""+
		"8.8.4.4/32\tdns\n"+
		"8.8.8.8/32\tdns\n"+
		"192.168.0.0/16\toffice\n"+
		"192.168.1.0/24\tlab\n",
		out,
	)
}
