package contracts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

// MetadataChecksum hashes the metadata snapshot. Go's map marshalling sorts
// keys, so the checksum is deterministic for a given snapshot.
func MetadataChecksum(metadata types.JSONMap) (string, error) {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// SignatureHash binds a signature to the exact document being signed: the
// signer's stored artifact, the contract identity and version, the metadata
// checksum, and the signing instant. Any version bump or metadata change
// yields a different hash, so a stale signature can never be replayed against
// a changed document.
func SignatureHash(artifact string, contractID uuid.UUID, version int, metadataChecksum string, signedAt time.Time) string {
	canonical := fmt.Sprintf("%s\n%s\n%d\n%s\n%s",
		artifact,
		contractID.String(),
		version,
		metadataChecksum,
		signedAt.UTC().Format(time.RFC3339Nano),
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
