package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mpath-tools/mpathkit/internal/constants"
	"github.com/ubuntu/decorate"
)

// KeyPair holds the paths of a generated RSA key pair.
type KeyPair struct {
	PrivatePath string
	PublicPath  string
}

// GenerateKeys creates a 2048-bit RSA key pair under dir, named after the
// conventional m-Path key files.
//
// It refuses to overwrite an existing private key. The public key PEM is what
// gets registered with the m-Path dashboard.
func GenerateKeys(dir string) (kp KeyPair, err error) {
	defer decorate.OnError(&err, "could not generate key pair")

	kp = KeyPair{
		PrivatePath: filepath.Join(dir, constants.PrivateKeyFileName),
		PublicPath:  filepath.Join(dir, constants.PublicKeyFileName),
	}

	if _, err := os.Stat(kp.PrivatePath); err == nil {
		return KeyPair{}, fmt.Errorf("private key already exists at %s", kp.PrivatePath)
	} else if !os.IsNotExist(err) {
		return KeyPair{}, err
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return KeyPair{}, err
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return KeyPair{}, err
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	if err := os.WriteFile(kp.PrivatePath, privPEM, 0600); err != nil {
		return KeyPair{}, err
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return KeyPair{}, err
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	if err := os.WriteFile(kp.PublicPath, pubPEM, 0644); err != nil {
		return KeyPair{}, err
	}

	return kp, nil
}
