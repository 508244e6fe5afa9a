package core

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// SecretKeeper holds the teacher's shared secret as a bcrypt hash for the
// lifetime of one session. Rotations only live as long as the process; the
// configured secret is restored on restart.
type SecretKeeper struct {
	mutex sync.RWMutex
	hash  []byte
}

// NewSecretKeeper seeds the keeper from config: a pre-computed bcrypt hash
// when available, otherwise the plaintext secret is hashed on the spot.
func NewSecretKeeper(conf *Config) (*SecretKeeper, error) {
	if conf.TeacherSecretHash != "" {
		return &SecretKeeper{hash: []byte(conf.TeacherSecretHash)}, nil
	}
	keeper := new(SecretKeeper)
	if err := keeper.Set(conf.TeacherSecret); err != nil {
		return nil, err
	}
	return keeper, nil
}

func (k *SecretKeeper) Set(secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	k.mutex.Lock()
	k.hash = hash
	k.mutex.Unlock()
	return nil
}

func (k *SecretKeeper) Check(secret string) error {
	k.mutex.RLock()
	defer k.mutex.RUnlock()
	return bcrypt.CompareHashAndPassword(k.hash, []byte(secret))
}
