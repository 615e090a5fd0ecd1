package qdrant

import (
	"testing"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func keywordOf(t *testing.T, cond *pb.Condition) (string, string) {
	t.Helper()
	field := cond.GetField()
	require.NotNil(t, field)
	return field.GetKey(), field.GetMatch().GetKeyword()
}

func TestTenantFilter_TenantOnly(t *testing.T) {
	f := tenantFilter("alice", "")
	require.Len(t, f.GetMust(), 1)

	key, value := keywordOf(t, f.GetMust()[0])
	require.Equal(t, payloadTenantID, key)
	require.Equal(t, "alice", value)
}

func TestTenantFilter_WithLanguage(t *testing.T) {
	f := tenantFilter("alice", "es")
	require.Len(t, f.GetMust(), 2)

	key, value := keywordOf(t, f.GetMust()[0])
	require.Equal(t, payloadTenantID, key)
	require.Equal(t, "alice", value)

	// The language lives inside the nested metadata payload.
	key, value = keywordOf(t, f.GetMust()[1])
	require.Equal(t, "metadata.language", key)
	require.Equal(t, "es", value)
}

func TestChunkPayload(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	payload := chunkPayload(domain.Chunk{
		TenantID:     "u1",
		DocumentName: "notes.txt",
		ChunkIndex:   2,
		Text:         "budget meeting thursday",
		TokenCount:   3,
		CreatedAt:    created,
		Metadata: map[string]any{
			domain.MetaLanguage:    "en",
			domain.MetaTotalTokens: 120,
			domain.MetaChunkMethod: domain.MethodOverlapping,
		},
	})

	require.Equal(t, "u1", payload[payloadTenantID].GetStringValue())
	require.Equal(t, "notes.txt", payload[payloadDocumentName].GetStringValue())
	require.Equal(t, int64(2), payload[payloadChunkIndex].GetIntegerValue())
	require.Equal(t, "budget meeting thursday", payload[payloadText].GetStringValue())
	require.Equal(t, int64(3), payload[payloadTokenCount].GetIntegerValue())
	require.Equal(t, "2026-03-14T09:26:53Z", payload[payloadCreatedAt].GetStringValue())

	meta := structToMap(payload[payloadMetadata].GetStructValue())
	require.Equal(t, "en", meta[domain.MetaLanguage])
	require.Equal(t, 120, meta[domain.MetaTotalTokens])
	require.Equal(t, domain.MethodOverlapping, meta[domain.MetaChunkMethod])
}

func TestAnyToValue(t *testing.T) {
	require.Equal(t, "hi", anyToValue("hi").GetStringValue())
	require.Equal(t, int64(7), anyToValue(7).GetIntegerValue())
	require.Equal(t, int64(9), anyToValue(int64(9)).GetIntegerValue())
	require.InDelta(t, 0.5, anyToValue(0.5).GetDoubleValue(), 1e-9)
	require.True(t, anyToValue(true).GetBoolValue())

	// Unhandled types degrade to their string form.
	require.Equal(t, "[1 2]", anyToValue([]int{1, 2}).GetStringValue())
}

func TestStructToMap_RoundTrip(t *testing.T) {
	in := map[string]any{
		"language":     "en",
		"total_tokens": 120,
		"score":        0.25,
		"final":        true,
	}
	require.Equal(t, in, structToMap(mapToStruct(in)))
}

func TestStructToMap_Empty(t *testing.T) {
	require.Nil(t, structToMap(nil))
	require.Nil(t, structToMap(&pb.Struct{}))
}
