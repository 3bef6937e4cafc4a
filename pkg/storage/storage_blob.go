// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/moov-io/achfile/internal/gpgx"
	"github.com/moov-io/achfile/pkg/config"

	"github.com/go-kit/kit/log"
	"golang.org/x/crypto/openpgp"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

var armorHeader = []byte("-----BEGIN PGP MESSAGE-----")

// blobStorage implements Storage with gocloud.dev/blob which allows
// clients to use AWS S3, GCP Storage, and Azure Storage.
type blobStorage struct {
	logger log.Logger
	bucket *blob.Bucket

	pubKey  openpgp.EntityList
	privKey openpgp.EntityList
}

func newBlobStorage(logger log.Logger, cfg config.Storage) (*blobStorage, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	storage := &blobStorage{
		logger: logger,
	}

	bucket, err := blob.OpenBucket(context.Background(), cfg.BucketURI)
	if err != nil {
		return nil, err
	}
	storage.bucket = bucket

	if cfg.GPG != nil {
		pubKey, err := gpgx.ReadEncryptionKeyFile(cfg.GPG.KeyFile)
		if err != nil {
			bucket.Close()
			return nil, err
		}
		storage.pubKey = pubKey

		if cfg.GPG.PrivateKeyFile != "" {
			privKey, err := gpgx.ReadPrivateKeyFile(cfg.GPG.PrivateKeyFile, []byte(cfg.GPG.PrivateKeyPassword))
			if err != nil {
				bucket.Close()
				return nil, err
			}
			storage.privKey = privKey
		}
	}
	return storage, nil
}

func (bs *blobStorage) Close() error {
	if bs == nil {
		return nil
	}
	return bs.bucket.Close()
}

func (bs *blobStorage) SaveFile(ctx context.Context, path string, contents []byte) error {
	if len(bs.pubKey) > 0 {
		encrypted, err := gpgx.Encrypt(contents, bs.pubKey)
		if err != nil {
			return fmt.Errorf("storage: encrypting %s: %v", path, err)
		}
		contents = encrypted
	}

	w, err := bs.bucket.NewWriter(ctx, path, nil)
	if err != nil {
		return err
	}

	_, copyErr := w.Write(contents)
	closeErr := w.Close()

	if copyErr != nil || closeErr != nil {
		return fmt.Errorf("copyErr=%v closeErr=%v", copyErr, closeErr)
	}
	return nil
}

func (bs *blobStorage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	contents, err := bs.bucket.ReadAll(ctx, path)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !bytes.HasPrefix(contents, armorHeader) {
		return contents, nil
	}
	if len(bs.privKey) == 0 {
		bs.logger.Log("storage", fmt.Sprintf("%s is encrypted and no private key is configured", path))
		return contents, nil
	}
	return gpgx.Decrypt(contents, bs.privKey)
}

func (bs *blobStorage) DeleteFile(ctx context.Context, path string) error {
	err := bs.bucket.Delete(ctx, path)
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return ErrNotFound
	}
	return err
}
