// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package gpgx

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/moov-io/achfile/internal/sshx"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

// ReadArmoredKeyFile attempts to read the filepath and parses an armored GPG key
func ReadArmoredKeyFile(path string) (openpgp.EntityList, error) {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return openpgp.ReadArmoredKeyRing(bytes.NewReader(bs))
}

// ReadEncryptionKeyFile reads an armored GPG public key, falling back to an
// RSA ssh public key converted for encryption.
func ReadEncryptionKeyFile(path string) (openpgp.EntityList, error) {
	keys, err := ReadArmoredKeyFile(path)
	if err == nil {
		return keys, nil
	}
	pub, sshErr := sshx.ReadPubKeyFile(path)
	if sshErr != nil {
		return nil, fmt.Errorf("gpgx: %s is neither a GPG key (%v) nor an ssh key (%v)", path, err, sshErr)
	}
	if keys := FromSSHPublicKey(pub); len(keys) > 0 {
		return keys, nil
	}
	return nil, fmt.Errorf("gpgx: %s is not an RSA key", path)
}

// ReadPrivateKeyFile attempts to read the filepath and parses an armored GPG private key
func ReadPrivateKeyFile(path string, password []byte) (openpgp.EntityList, error) {
	entityList, err := ReadArmoredKeyFile(path)
	if err != nil {
		return nil, err
	}
	if len(entityList) == 0 {
		return nil, fmt.Errorf("gpgx: no keys found in %s", path)
	}
	entity := entityList[0]
	if entity.PrivateKey == nil {
		return nil, fmt.Errorf("gpgx: %s is not a private key", path)
	}

	if err := entity.PrivateKey.Decrypt(password); err != nil {
		return nil, fmt.Errorf("gpgx: decrypting private key: %v", err)
	}
	for _, subkey := range entity.Subkeys {
		if subkey.PrivateKey != nil {
			if err := subkey.PrivateKey.Decrypt(password); err != nil {
				return nil, fmt.Errorf("gpgx: decrypting subkey: %v", err)
			}
		}
	}

	return entityList, nil
}

// Encrypt returns msg as an armored PGP message readable by pubkeys.
func Encrypt(msg []byte, pubkeys openpgp.EntityList) ([]byte, error) {
	return encrypt(msg, pubkeys, nil)
}

// EncryptAndSign is Encrypt with signer's signature attached to the message.
func EncryptAndSign(msg []byte, pubkeys openpgp.EntityList, signer *openpgp.Entity) ([]byte, error) {
	if signer == nil || signer.PrivateKey == nil {
		return nil, errors.New("gpgx: signing requires a private key")
	}
	return encrypt(msg, pubkeys, signer)
}

func encrypt(msg []byte, pubkeys openpgp.EntityList, signer *openpgp.Entity) ([]byte, error) {
	var buf bytes.Buffer
	armorCloser, err := armor.Encode(&buf, "PGP MESSAGE", nil)
	if err != nil {
		return nil, err
	}
	encCloser, err := openpgp.Encrypt(armorCloser, pubkeys, signer, nil, nil)
	if err != nil {
		return nil, err
	}
	if _, err := encCloser.Write(msg); err != nil {
		return nil, err
	}
	if err := encCloser.Close(); err != nil {
		return nil, err
	}
	if err := armorCloser.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decrypt reads an armored message with keys[0]. When a second key is given
// the message must be signed by it.
func Decrypt(cipherArmored []byte, keys openpgp.EntityList) ([]byte, error) {
	if len(keys) == 0 || len(keys) > 2 || keys[0].PrivateKey == nil {
		return nil, errors.New("gpgx: requires a single private key")
	}
	return readMessage(cipherArmored, keys)
}

func readMessage(armoredMessage []byte, keys openpgp.EntityList) ([]byte, error) {
	result, err := armor.Decode(bytes.NewReader(armoredMessage))
	if err != nil {
		return nil, err
	}

	md, err := openpgp.ReadMessage(result.Body, keys, nil, nil)
	if err != nil {
		return nil, err
	}

	if len(keys) == 2 {
		if md.SignedBy == nil || md.SignedBy.PublicKey == nil {
			return nil, errors.New("gpgx: verifying public key included, but message is not signed")
		} else if md.SignedBy.PublicKey.Fingerprint != keys[1].PrimaryKey.Fingerprint {
			return nil, errors.New("gpgx: signature pubkey doesn't match signing pubkey")
		}
	}

	bs, err := ioutil.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, err
	}
	if md.SignatureError != nil {
		return nil, md.SignatureError
	}
	return bs, nil
}
