package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEnvelope_AcceptsRenderedPass(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, passSummary()))
	assert.NoError(t, ValidateEnvelope(buf.Bytes()))
}

func TestValidateEnvelope_AcceptsRenderedFail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, failSummary()))
	assert.NoError(t, ValidateEnvelope(buf.Bytes()))
}

func TestValidateEnvelope_RejectsBadOutcome(t *testing.T) {
	raw := []byte(`{"status":"ok","data":{"target":"127.0.0.1:18080","seed":1,"outcome":"maybe","scenarios":[]}}`)
	assert.Error(t, ValidateEnvelope(raw))
}

func TestValidateEnvelope_RejectsUnknownField(t *testing.T) {
	raw := []byte(`{"status":"ok","data":{"target":"127.0.0.1:18080","seed":1,"outcome":"pass","scenarios":[],"extra":true}}`)
	assert.Error(t, ValidateEnvelope(raw))
}

func TestValidateEnvelope_RejectsMissingData(t *testing.T) {
	raw := []byte(`{"status":"ok"}`)
	assert.Error(t, ValidateEnvelope(raw))
}

func TestValidateEnvelope_RejectsMalformedJSON(t *testing.T) {
	assert.Error(t, ValidateEnvelope([]byte("{not json")))
}
