package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginPatterns(t *testing.T) {
	assert.Equal(t,
		[]string{"localhost:4200", "app.example.com", "*"},
		originPatterns([]string{"http://localhost:4200", "https://app.example.com", "not a url", "*"}))
	assert.Empty(t, originPatterns(nil))
}

func TestHubPaths(t *testing.T) {
	chat, notifications := hubPaths(nil)
	assert.Equal(t, "/chatHub", chat)
	assert.Equal(t, "/notificationHub", notifications)

	chat, notifications = hubPaths([]string{"/hubs/chat", "/hubs/notify"})
	assert.Equal(t, "/hubs/chat", chat)
	assert.Equal(t, "/hubs/notify", notifications)
}
