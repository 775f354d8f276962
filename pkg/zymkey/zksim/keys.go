package zksim

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"

	zkcrypto "github.com/anchorageoss/zkclient/crypto"
)

// keySet holds every key derived from a seed.
type keySet struct {
	local  cipher.AEAD
	shared cipher.AEAD
	slots  [MaxSlots]*ecdsa.PrivateKey
	serial string
}

func deriveKeys(seed []byte) *keySet {
	ks := &keySet{
		local:  newAEAD(derive(seed, "zksim lock zymkey", 32)),
		shared: newAEAD(derive(seed, "zksim lock cloud", 32)),
		serial: hex.EncodeToString(derive(seed, "zksim serial", 8)),
	}
	for i := range ks.slots {
		ks.slots[i] = slotKey(derive(seed, fmt.Sprintf("zksim ecdsa slot %d", i), 40))
	}
	return ks
}

// derive expands seed with HKDF-SHA256 using info for domain separation.
func derive(seed []byte, info string, length int) []byte {
	r := hkdf.New(sha256.New, seed, nil, []byte(info))
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		panic("zksim: hkdf: " + err.Error())
	}
	return out
}

func newAEAD(key []byte) cipher.AEAD {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic("zksim: aes: " + err.Error())
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		panic("zksim: gcm: " + err.Error())
	}
	return gcm
}

// slotKey maps uniform bytes onto a P-256 scalar in [1, N-1].
func slotKey(material []byte) *ecdsa.PrivateKey {
	curve := elliptic.P256()
	n1 := new(big.Int).Sub(curve.Params().N, big.NewInt(1))
	d := new(big.Int).SetBytes(material)
	d.Mod(d, n1)
	d.Add(d, big.NewInt(1))

	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve},
		D:         d,
	}
	key.X, key.Y = curve.ScalarBaseMult(d.FillBytes(make([]byte, 32)))
	return key
}

// seal encrypts plaintext as nonce || ciphertext || tag.
func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func unseal(aead cipher.AEAD, data []byte) ([]byte, error) {
	if len(data) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ct := data[:aead.NonceSize()], data[aead.NonceSize():]
	return aead.Open(nil, nonce, ct, nil)
}

// sign returns an r || s signature over digest.
func sign(key *ecdsa.PrivateKey, digest []byte) ([]byte, error) {
	der, err := ecdsa.SignASN1(rand.Reader, key, digest)
	if err != nil {
		return nil, err
	}
	return zkcrypto.DERToRaw(der)
}
