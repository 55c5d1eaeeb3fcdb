package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simbi/simbi-seller/internal/app"
	_ "github.com/simbi/simbi-seller/internal/testing/guard"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	app.RefreshTestMode()
	assert.True(t, app.InTestMode())
	assert.NotPanics(t, main)
}
