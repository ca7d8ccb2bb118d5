// Package credential はパスワードの一方向ハッシュと照合を提供する。
// Argon2idで導出したキーをPHC形式の文字列に符号化して保持する。
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params はArgon2idのコストパラメータを表す。
type Params struct {
	Memory      uint32 // メモリ使用量（KB）
	Iterations  uint32 // 反復回数
	Parallelism uint8  // 並列度
	SaltLength  uint32 // ソルト長（バイト）
	KeyLength   uint32 // 導出キー長（バイト）
}

// DefaultParams は小規模バックエンド向けの標準パラメータ。
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher はパスワードのハッシュ化と照合を行う。
type Hasher struct {
	params Params
}

// NewHasher はHasherを生成する。paramsがゼロ値の場合はDefaultParamsを使う。
func NewHasher(params Params) *Hasher {
	if params == (Params{}) {
		params = DefaultParams
	}
	return &Hasher{params: params}
}

// Hash はランダムソルトでパスワードをハッシュ化し、PHC形式の文字列を返す。
// 同じパスワードでも呼び出しごとに異なる文字列になる。
func (h *Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(secret),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	// PHC形式にはパラメータも含める。後からDefaultParamsを変えても照合できる。
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify は平文パスワードとPHC形式のダイジェストを照合する。
// 不一致は(false, nil)であり、エラーにはしない。比較は一定時間で行う。
func (h *Hasher) Verify(secret, digest string) (bool, error) {
	params, salt, key, err := decodeDigest(digest)
	if err != nil {
		return false, fmt.Errorf("invalid digest format: %w", err)
	}

	other := argon2.IDKey(
		[]byte(secret),
		salt,
		params.Iterations,
		params.Memory,
		params.Parallelism,
		params.KeyLength,
	)

	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

// decodeDigest はPHC形式の文字列からパラメータ・ソルト・キーを取り出す。
func decodeDigest(digest string) (Params, []byte, []byte, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("unexpected digest structure")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, err
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("incompatible argon2 version: %d", version)
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return Params{}, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, err
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, err
	}
	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}
