package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "iofimport", cmd.Use)
	assert.Contains(t, cmd.Long, "IOF XML 3.0")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"import"},
		{"validate"},
		{"events", "list"},
		{"events", "create"},
		{"result-lists", "list"},
		{"standings"},
		{"runs", "list"},
		{"watch"},
		{"stats"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue, "database comes from config unless overridden")
}

func TestImportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	importCmd, _, err := cmd.Find([]string{"import"})
	require.NoError(t, err)

	strictFlag := importCmd.Flags().Lookup("strict")
	require.NotNil(t, strictFlag)
	assert.Equal(t, "false", strictFlag.DefValue)
}

func TestStandingsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	standingsCmd, _, err := cmd.Find([]string{"standings"})
	require.NoError(t, err)

	require.NotNil(t, standingsCmd.Flags().Lookup("event"))
	require.NotNil(t, standingsCmd.Flags().Lookup("class"))
	splitsFlag := standingsCmd.Flags().Lookup("splits")
	require.NotNil(t, splitsFlag)
	assert.Equal(t, "false", splitsFlag.DefValue)
}

func TestListCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{{"events", "list"}, {"result-lists", "list"}, {"runs", "list"}} {
		listCmd, _, err := cmd.Find(path)
		require.NoError(t, err)

		skipFlag := listCmd.Flags().Lookup("skip")
		require.NotNil(t, skipFlag, "%v", path)
		assert.Equal(t, "0", skipFlag.DefValue)

		limitFlag := listCmd.Flags().Lookup("limit")
		require.NotNil(t, limitFlag, "%v", path)
		assert.Equal(t, "100", limitFlag.DefValue)
	}
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "events", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
