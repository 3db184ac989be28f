package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
)

// EnvelopeField holds the ciphertext of an encrypted record.
const EnvelopeField = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are old keys tried when decryption with ActiveKey fails.
	FallbackKeys [][]byte

	// KeyFor names the identity field kept in clear text so the store can index records.
	// Defaults to "id".
	KeyFor ports.KeyResolver
}

type encryptionMiddleware struct {
	ports.RecordStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts records and autosaves with
// AES-GCM before they reach the store, and decrypts them on reads.
// Embed previews are public oEmbed data and stay in clear text.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	if config.KeyFor == nil {
		config.KeyFor = func(string, string) string { return domain.DefaultKey }
	}
	return func(next ports.RecordStore) ports.RecordStore {
		return &encryptionMiddleware{RecordStore: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Dispatch(ctx context.Context, action domain.Action) error {
	switch a := action.(type) {
	case domain.ReceiveEntityRecords:
		field := m.config.KeyFor(a.Kind, a.Name)
		records := make([]domain.Record, len(a.Records))
		for i, record := range a.Records {
			sealed, err := m.seal(record, field)
			if err != nil {
				return err
			}
			records[i] = sealed
		}
		a.Records = records
		return m.RecordStore.Dispatch(ctx, a)
	case domain.ReceiveAutosave:
		sealed, err := m.seal(a.Autosave, "")
		if err != nil {
			return err
		}
		a.Autosave = sealed
		return m.RecordStore.Dispatch(ctx, a)
	default:
		return m.RecordStore.Dispatch(ctx, action)
	}
}

func (m *encryptionMiddleware) Record(ctx context.Context, kind, name, key string) (domain.Record, error) {
	envelope, err := m.RecordStore.Record(ctx, kind, name, key)
	if err != nil {
		return nil, err
	}
	return m.open(envelope)
}

func (m *encryptionMiddleware) Records(ctx context.Context, kind, name string) ([]domain.Record, error) {
	envelopes, err := m.RecordStore.Records(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Record, len(envelopes))
	for i, envelope := range envelopes {
		if out[i], err = m.open(envelope); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (m *encryptionMiddleware) Autosave(ctx context.Context, postID int) (domain.Record, error) {
	envelope, err := m.RecordStore.Autosave(ctx, postID)
	if err != nil {
		return nil, err
	}
	return m.open(envelope)
}

// seal replaces record with an envelope, keeping keyField in clear text.
func (m *encryptionMiddleware) seal(record domain.Record, keyField string) (domain.Record, error) {
	plainText, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt record: %w", err)
	}

	envelope := domain.Record{EnvelopeField: base64.StdEncoding.EncodeToString(ciphertext)}
	if v, ok := record[keyField]; ok && keyField != "" {
		envelope[keyField] = v
	}
	return envelope, nil
}

func (m *encryptionMiddleware) open(envelope domain.Record) (domain.Record, error) {
	encoded, ok := envelope[EnvelopeField].(string)
	if !ok {
		return nil, errors.New("record is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt record: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal(plainText, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted record: %w", err)
	}
	return record, nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	for _, key := range append([][]byte{activeKey}, fallbackKeys...) {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
