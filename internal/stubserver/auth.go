package stubserver

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// TokenAuthority выпускает и проверяет bearer-токены, подписанные
// HMAC-SHA256. Токен имеет вид base64url(email).hex(подпись).
type TokenAuthority struct {
	secretKey []byte
}

// NewTokenAuthority создаёт эмитент токенов с указанным секретным ключом.
// При пустом ключе генерируется случайный: такие токены не переживают
// перезапуск заглушки.
func NewTokenAuthority(secret string) *TokenAuthority {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &TokenAuthority{
		secretKey: key,
	}
}

// Issue выпускает токен для указанной почты.
func (t *TokenAuthority) Issue(email string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(email))
	return payload + "." + t.sign(payload)
}

// Verify проверяет подпись токена и возвращает почту его владельца.
func (t *TokenAuthority) Verify(token string) (string, bool) {
	payload, signature, ok := strings.Cut(token, ".")
	if !ok {
		return "", false
	}

	if !hmac.Equal([]byte(signature), []byte(t.sign(payload))) {
		return "", false
	}

	email, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}

	return string(email), true
}

func (t *TokenAuthority) sign(payload string) string {
	mac := hmac.New(sha256.New, t.secretKey)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
