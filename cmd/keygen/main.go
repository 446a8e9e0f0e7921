// Command keygen writes the ECDSA key pair used to sign admin tokens.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/jwt"
)

func main() {
	privatePath := flag.String("private", "ecdsa_private.pem", "Path of the private key")
	publicPath := flag.String("public", "ecdsa_public.pem", "Path of the public key")
	flag.Parse()

	if err := jwt.WriteECDSAKeys(*privatePath, *publicPath); err != nil {
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s and %s\n", *privatePath, *publicPath)
}
