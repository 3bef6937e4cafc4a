// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package gpgx

import (
	"crypto"
	"crypto/rsa"
	"time"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/packet"
	_ "golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/ssh"
)

// FromSSHPublicKey wraps an RSA ssh public key in an encrypt-only GPG entity.
// Other key types return nil.
func FromSSHPublicKey(in ssh.PublicKey) openpgp.EntityList {
	pk, ok := in.(ssh.CryptoPublicKey)
	if !ok {
		return nil
	}
	rsaKey, ok := pk.CryptoPublicKey().(*rsa.PublicKey)
	if !ok {
		return nil
	}
	return openpgp.EntityList{encryptionEntity(packet.NewRSAPublicKey(time.Now(), rsaKey))}
}

// encryptionEntity builds an entity whose only subkey is pubKey, flagged for
// encrypting storage and communications.
//
// Adapted from https://github.com/jchavannes/go-pgp/blob/master/pgp/entity.go
func encryptionEntity(pubKey *packet.PublicKey) *openpgp.Entity {
	config := packet.Config{
		DefaultHash:            crypto.SHA256,
		DefaultCipher:          packet.CipherAES256,
		DefaultCompressionAlgo: packet.CompressionNone,
	}
	now := config.Now()
	uid := packet.NewUserId("", "", "")
	isPrimaryID := false
	keyLifetimeSecs := uint32(86400 * 365)

	e := &openpgp.Entity{
		PrimaryKey: pubKey,
		Identities: make(map[string]*openpgp.Identity),
	}
	e.Identities[uid.Id] = &openpgp.Identity{
		Name:   uid.Name,
		UserId: uid,
		SelfSignature: &packet.Signature{
			CreationTime: now,
			SigType:      packet.SigTypePositiveCert,
			PubKeyAlgo:   packet.PubKeyAlgoRSA,
			Hash:         config.Hash(),
			IsPrimaryId:  &isPrimaryID,
			FlagsValid:   true,
			FlagSign:     true,
			FlagCertify:  true,
			IssuerKeyId:  &e.PrimaryKey.KeyId,
		},
	}
	e.Subkeys = []openpgp.Subkey{
		{
			PublicKey: pubKey,
			Sig: &packet.Signature{
				CreationTime:              now,
				SigType:                   packet.SigTypeSubkeyBinding,
				PubKeyAlgo:                packet.PubKeyAlgoRSA,
				Hash:                      config.Hash(),
				PreferredHash:             []uint8{8}, // SHA-256
				FlagsValid:                true,
				FlagEncryptStorage:        true,
				FlagEncryptCommunications: true,
				IssuerKeyId:               &e.PrimaryKey.KeyId,
				KeyLifetimeSecs:           &keyLifetimeSecs,
			},
		},
	}
	return e
}
