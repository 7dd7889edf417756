package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	"backoffice/internal/domain/audit"
)

// CompressionAlgo names the codec of a stored payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which payloads are zstd-compressed.
const DefaultCompressThreshold = 10 * 1024

var _ audit.Recorder = (*AuditService)(nil)

// AuditService writes request audit entries into sys_audit.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record implements audit.Recorder.
func (s *AuditService) Record(ctx context.Context, entry audit.Entry) error {
	plain, compressed, algo := s.encode(entry.Payload)

	query, args, err := sq.Insert("sys_audit").
		Columns("id", "user_id", "method", "endpoint", "status_code",
			"payload", "payload_compressed", "compression_algo", "created_at").
		Values(entry.ID, entry.UserID, entry.Method, entry.Endpoint, entry.StatusCode,
			plain, compressed, algo, entry.CreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// encode returns the payload either as-is or compressed, never both.
// Empty payloads are stored as NULL.
func (s *AuditService) encode(payload []byte) (plain, compressed []byte, algo CompressionAlgo) {
	if len(payload) == 0 {
		return nil, nil, CompressionNone
	}
	if len(payload) <= s.compressThreshold {
		return payload, nil, CompressionNone
	}
	return nil, s.encoder.EncodeAll(payload, nil), CompressionZstd
}

// decode reverses encode.
func (s *AuditService) decode(plain, compressed []byte, algo CompressionAlgo) ([]byte, error) {
	if algo != CompressionZstd {
		return plain, nil
	}
	out, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress audit payload: %w", err)
	}
	return out, nil
}
