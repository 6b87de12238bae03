package protocol

import (
	"encoding/json"
	"testing"

	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_PublishOffer(t *testing.T) {
	info := StreamInfo{ApplicationName: "live", StreamName: "cam1", SessionID: "s1"}
	req := NewPublishOffer(info, &SessionDescription{Type: "offer", SDP: "v=0\r\n"}, map[string]interface{}{"sessionId": "s1"})

	data, err := Encode(req)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "publish", got["direction"])
	assert.Equal(t, "sendOffer", got["command"])
	assert.Equal(t, map[string]interface{}{"applicationName": "live", "streamName": "cam1", "sessionId": "s1"}, got["streamInfo"])
	assert.Equal(t, map[string]interface{}{"type": "offer", "sdp": "v=0\r\n"}, got["sdp"])
	assert.Equal(t, map[string]interface{}{"sessionId": "s1"}, got["userData"])
}

func TestEncode_PlayMessages(t *testing.T) {
	info := StreamInfo{ApplicationName: "live", StreamName: "cam1"}

	data, err := Encode(NewPlayGetOffer(info, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"direction":"play","command":"getOffer","streamInfo":{"applicationName":"live","streamName":"cam1","sessionId":""}}`, string(data))

	data, err = Encode(NewPlayAnswer(info, &SessionDescription{Type: "answer", SDP: "x"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"direction":"play","command":"sendResponse","streamInfo":{"applicationName":"live","streamName":"cam1","sessionId":""},"sdp":{"type":"answer","sdp":"x"}}`, string(data))

	data, err = Encode(NewPlayAvailableStreams(info, "u"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"command":"getAvailableStreams"`)
}

func TestDecode_Response(t *testing.T) {
	raw := `{"status":200,"command":"getOffer","sdp":{"type":"offer","sdp":"v=0"},"streamInfo":{"sessionId":"srv-1"},"iceCandidates":[{"candidate":"candidate:1 1 UDP 1 1.2.3.4 5000 typ host","sdpMLineIndex":0,"sdpMid":"0"}]}`

	resp, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.False(t, resp.Retryable())
	assert.Equal(t, "getOffer", resp.Command)
	assert.Equal(t, "v=0", resp.SDP.SDP)
	id, ok := resp.AssignedSessionID()
	assert.True(t, ok)
	assert.Equal(t, "srv-1", id)
	require.Len(t, resp.ICECandidates, 1)

	init := resp.ICECandidates[0].WebRTC()
	assert.Equal(t, "candidate:1 1 UDP 1 1.2.3.4 5000 typ host", init.Candidate)
	require.NotNil(t, init.SDPMLineIndex)
	assert.Equal(t, uint16(0), *init.SDPMLineIndex)
	assert.Equal(t, "0", *init.SDPMid)
	assert.JSONEq(t, raw, string(resp.Raw))
}

func TestDecode_StatusForms(t *testing.T) {
	resp, err := Decode([]byte(`{"status":"514"}`))
	require.NoError(t, err)
	assert.True(t, resp.Retryable())

	resp, err = Decode([]byte(`{"status":502,"statusDescription":"no stream"}`))
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "no stream", resp.StatusDesc)

	_, ok := resp.AssignedSessionID()
	assert.False(t, ok)

	resp, err = Decode([]byte(`{"status":"200.0"}`))
	require.NoError(t, err)
	assert.True(t, resp.OK())

	resp, err = Decode([]byte(`{"status":514.0}`))
	require.NoError(t, err)
	assert.True(t, resp.Retryable())

	_, err = Decode([]byte(`{"status":"abc"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"status":"NaN"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestSessionDescription_WebRTC(t *testing.T) {
	d := SessionDescription{Type: "answer", SDP: "v=0"}
	w := d.WebRTC()
	assert.Equal(t, webrtc.SDPTypeAnswer, w.Type)
	assert.Equal(t, d, *FromWebRTC(w))
}
