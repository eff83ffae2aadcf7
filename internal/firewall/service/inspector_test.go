package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMalformedPathTraversal(t *testing.T) {
	i := NewInspector()

	assert.True(t, i.Malformed("/v1/../etc/passwd", "", ""))
	assert.True(t, i.Malformed("/v1/%2e%2e/secret", "", ""))
	assert.False(t, i.Malformed("/v1/access/check", "", ""))
}

func TestMalformedScriptMarkers(t *testing.T) {
	i := NewInspector()

	assert.True(t, i.Malformed("/v1/access/check", "application/json", `<script>alert(1)</script>`))
	assert.True(t, i.Malformed("/v1/access/check", "application/json", `javascript:void(0)`))
	assert.True(t, i.Malformed("/v1/access/check", "application/json", `<img onerror=steal()>`))
}

func TestMalformedSQLMarkers(t *testing.T) {
	i := NewInspector()

	assert.True(t, i.Malformed("/v1/access/check", "application/json", `' OR '1'='1`))
	assert.True(t, i.Malformed("/v1/access/check", "application/json", `1 UNION SELECT password FROM users`))
	assert.True(t, i.Malformed("/v1/access/check", "application/json", `x'; DROP TABLE events`))
}

func TestMalformedContentType(t *testing.T) {
	i := NewInspector()

	assert.False(t, i.Malformed("/v1/access/check", "application/json", "bonjour"))
	assert.False(t, i.Malformed("/v1/access/check", "application/json; charset=utf-8", "bonjour"))
	assert.False(t, i.Malformed("/v1/access/check", "text/plain", "bonjour"))
	assert.True(t, i.Malformed("/v1/access/check", "application/xml", "bonjour"))
	assert.True(t, i.Malformed("/v1/access/check", "multipart/form-data", "bonjour"))
}

func TestMalformedBenignFrenchText(t *testing.T) {
	i := NewInspector()

	assert.False(t, i.Malformed("/v1/access/check", "application/json", "allume la lumière et monte le chauffage"))
}
