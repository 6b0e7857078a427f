package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekeep/gatekeep/internal/app"
	"github.com/gatekeep/gatekeep/internal/notify"
	_ "github.com/gatekeep/gatekeep/internal/testing/guard"
)

func TestNewSenderSelection(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sender, err := newSender(&app.Config{AppEnv: "development"}, logger)
	require.NoError(t, err)
	assert.IsType(t, notify.LogSender{}, sender)

	_, err = newSender(&app.Config{AppEnv: "production"}, logger)
	assert.Error(t, err)

	sender, err = newSender(&app.Config{SMSGatewayURL: "https://sms.example.com/send"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.HTTPGateway{}, sender)
}
