package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

func GenerateECDSAKeyPair() (*ecdsa.PrivateKey, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	return privateKey, nil
}

// WriteECDSAKeys generates a P-256 pair and stores it PEM encoded at the given paths.
func WriteECDSAKeys(privatePath, publicPath string) error {
	privateKey, err := GenerateECDSAKeyPair()
	if err != nil {
		return err
	}

	privateBytes, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to convert an EC private key to SEC 1: %w", err)
	}

	if err := writePEM(privatePath, "EC PRIVATE KEY", privateBytes, 0o600); err != nil {
		return err
	}

	publicBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to convert a public key to PKIX: %w", err)
	}

	return writePEM(publicPath, "PUBLIC KEY", publicBytes, 0o644)
}

func writePEM(path, blockType string, data []byte, perm os.FileMode) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	defer func() {
		if cErr := file.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cErr)
		}
	}()

	if err = pem.Encode(file, &pem.Block{
		Type:  blockType,
		Bytes: data,
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
