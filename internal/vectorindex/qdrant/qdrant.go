// Package qdrant delegates vector storage and search to a Qdrant server over
// gRPC. Tenant and language predicates are pushed down as server-side
// filters, and the similarity threshold is applied server-side, so recall
// semantics match the flat backend up to the approximation of the remote
// index.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"docqa/internal/domain"
)

const (
	payloadTenantID     = "tenant_id"
	payloadDocumentName = "document_name"
	payloadChunkIndex   = "chunk_index"
	payloadText         = "text"
	payloadTokenCount   = "token_count"
	payloadCreatedAt    = "created_at"
	payloadMetadata     = "metadata"
)

// Config holds connection details for a Qdrant backend.
type Config struct {
	Addr       string
	Collection string
	Timeout    time.Duration
}

// Index is a vectorindex.Index backed by a Qdrant collection with cosine
// distance. Point IDs are generated per insertion.
type Index struct {
	collection  string
	timeout     time.Duration
	dimension   int
	conn        *grpc.ClientConn
	collections pb.CollectionsClient
	points      pb.PointsClient
}

func New(cfg Config) (*Index, error) {
	if cfg.Collection == "" {
		cfg.Collection = "docqa_embeddings"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	conn, err := grpc.Dial(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant at %s: %w", cfg.Addr, err)
	}
	return &Index{
		collection:  cfg.Collection,
		timeout:     cfg.Timeout,
		conn:        conn,
		collections: pb.NewCollectionsClient(conn),
		points:      pb.NewPointsClient(conn),
	}, nil
}

func (idx *Index) Close() error { return idx.conn.Close() }

// Init ensures the collection exists with cosine distance and the given
// dimension. An existing collection with a different vector size is a
// configuration error, never silently reused.
func (idx *Index) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	ctx, cancel := idx.callCtx(ctx)
	defer cancel()

	list, err := idx.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	exists := false
	for _, col := range list.GetCollections() {
		if col.GetName() == idx.collection {
			exists = true
			break
		}
	}
	if exists {
		info, err := idx.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: idx.collection})
		if err != nil {
			return fmt.Errorf("describe collection %s: %w", idx.collection, err)
		}
		size := info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
		if size != uint64(dimension) {
			return fmt.Errorf("%w: collection %s has size %d, requested %d",
				domain.ErrDimensionConflict, idx.collection, size, dimension)
		}
		idx.dimension = dimension
		return nil
	}

	_, err = idx.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: idx.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", idx.collection, err)
	}
	idx.dimension = dimension
	return nil
}

// Add upserts the batch in one waited call; Qdrant applies it atomically
// from the caller's perspective, and the batch is validated locally first.
func (idx *Index) Add(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	if idx.dimension == 0 {
		return fmt.Errorf("index not initialized")
	}
	points := make([]*pb.PointStruct, 0, len(records))
	for i, r := range records {
		if len(r.Vector) != idx.dimension {
			return fmt.Errorf("%w: record %d has %d components, index has %d",
				domain.ErrDimensionMismatch, i, len(r.Vector), idx.dimension)
		}
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		points = append(points, &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: id},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Vector},
				},
			},
			Payload: chunkPayload(r.Payload),
		})
	}

	ctx, cancel := idx.callCtx(ctx)
	defer cancel()
	wait := true
	_, err := idx.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: idx.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

func (idx *Index) Search(ctx context.Context, q domain.Query) ([]domain.Result, error) {
	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}
	threshold := q.Threshold

	ctx, cancel := idx.callCtx(ctx)
	defer cancel()
	resp, err := idx.points.Search(ctx, &pb.SearchPoints{
		CollectionName: idx.collection,
		Vector:         q.Vector,
		Limit:          uint64(topK),
		Filter:         tenantFilter(q.TenantID, q.Language),
		ScoreThreshold: &threshold,
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	results := make([]domain.Result, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		payload := hit.GetPayload()
		results = append(results, domain.Result{
			Text:         payload[payloadText].GetStringValue(),
			DocumentName: payload[payloadDocumentName].GetStringValue(),
			ChunkIndex:   int(payload[payloadChunkIndex].GetIntegerValue()),
			Score:        hit.GetScore(),
			Metadata:     structToMap(payload[payloadMetadata].GetStructValue()),
		})
	}
	return results, nil
}

// ClearTenant counts the tenant's points (exact, same filter) and then
// deletes them by filter, returning the count. The pair is not atomic:
// concurrent writes for the tenant during a clear can skew the number, which
// is accepted for auditing purposes. Tenant clears never recreate the
// collection; that is reserved for a full reset of all tenants.
func (idx *Index) ClearTenant(ctx context.Context, tenantID string) (int, error) {
	filter := tenantFilter(tenantID, "")

	ctx, cancel := idx.callCtx(ctx)
	defer cancel()
	exact := true
	count, err := idx.points.Count(ctx, &pb.CountPoints{
		CollectionName: idx.collection,
		Filter:         filter,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("count points for tenant: %w", err)
	}
	removed := int(count.GetResult().GetCount())
	if removed == 0 {
		return 0, nil
	}

	wait := true
	_, err = idx.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: idx.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{Filter: filter},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("delete points for tenant: %w", err)
	}
	return removed, nil
}

func (idx *Index) Stats(ctx context.Context) (domain.Stats, error) {
	ctx, cancel := idx.callCtx(ctx)
	defer cancel()
	info, err := idx.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: idx.collection})
	if err != nil {
		return domain.Stats{}, fmt.Errorf("describe collection %s: %w", idx.collection, err)
	}
	return domain.Stats{
		TotalVectors: int(info.GetResult().GetPointsCount()),
		Dimension:    idx.dimension,
		Backend:      "qdrant",
	}, nil
}

// Reset drops and recreates the collection, erasing every tenant. This is
// the only operation that recreates the collection.
func (idx *Index) Reset(ctx context.Context) error {
	if idx.dimension == 0 {
		return fmt.Errorf("index not initialized")
	}
	callCtx, cancel := idx.callCtx(ctx)
	defer cancel()
	_, err := idx.collections.Delete(callCtx, &pb.DeleteCollection{CollectionName: idx.collection})
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", idx.collection, err)
	}
	dim := idx.dimension
	idx.dimension = 0
	return idx.Init(ctx, dim)
}

func (idx *Index) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, idx.timeout)
}

func tenantFilter(tenantID, language string) *pb.Filter {
	must := []*pb.Condition{keywordCondition(payloadTenantID, tenantID)}
	if language != "" {
		must = append(must, keywordCondition(payloadMetadata+"."+domain.MetaLanguage, language))
	}
	return &pb.Filter{Must: must}
}

func keywordCondition(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   key,
				Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
			},
		},
	}
}

func chunkPayload(c domain.Chunk) map[string]*pb.Value {
	return map[string]*pb.Value{
		payloadTenantID:     stringValue(c.TenantID),
		payloadDocumentName: stringValue(c.DocumentName),
		payloadChunkIndex:   integerValue(int64(c.ChunkIndex)),
		payloadText:         stringValue(c.Text),
		payloadTokenCount:   integerValue(int64(c.TokenCount)),
		payloadCreatedAt:    stringValue(c.CreatedAt.UTC().Format(time.RFC3339)),
		payloadMetadata:     {Kind: &pb.Value_StructValue{StructValue: mapToStruct(c.Metadata)}},
	}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func integerValue(n int64) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: n}}
}

func mapToStruct(m map[string]any) *pb.Struct {
	fields := make(map[string]*pb.Value, len(m))
	for k, v := range m {
		fields[k] = anyToValue(v)
	}
	return &pb.Struct{Fields: fields}
}

func anyToValue(v any) *pb.Value {
	switch x := v.(type) {
	case string:
		return stringValue(x)
	case int:
		return integerValue(int64(x))
	case int64:
		return integerValue(x)
	case float64:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: x}}
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: x}}
	default:
		return stringValue(fmt.Sprint(x))
	}
}

func structToMap(s *pb.Struct) map[string]any {
	fields := s.GetFields()
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]any, len(fields))
	for k, v := range fields {
		switch kind := v.GetKind().(type) {
		case *pb.Value_StringValue:
			m[k] = kind.StringValue
		case *pb.Value_IntegerValue:
			m[k] = int(kind.IntegerValue)
		case *pb.Value_DoubleValue:
			m[k] = kind.DoubleValue
		case *pb.Value_BoolValue:
			m[k] = kind.BoolValue
		}
	}
	return m
}
