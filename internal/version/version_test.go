package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	orig := Commit
	t.Cleanup(func() { Commit = orig })
	Commit = "abc123"

	info := Info()
	assert.Equal(t, Application, info.Name)
	assert.Equal(t, Version, info.GitVersion)
	assert.Equal(t, "abc123", info.GitCommit)
	assert.Equal(t, Description, info.Description)
}
