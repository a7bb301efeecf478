/*
Package contracts provides access to compiled Vault contract artifacts.
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	neoio "github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

const (
	// VaultDir is the conventional directory of Vault contract artifacts.
	VaultDir = "vault"

	nefName      = "contract.nef"
	manifestName = "manifest.json"
)

// Contract groups information about compiled Neo contract.
type Contract struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	errInvalidNEF      = errors.New("invalid NEF")
	errInvalidManifest = errors.New("invalid manifest")
)

// Read reads contract from the directory of the given file system. The
// directory must contain contract.nef and manifest.json files.
func Read(fsys fs.FS, dir string) (Contract, error) {
	// fs.FS uses "/" even on Windows, so filepath.Join() is not applicable.
	fNEF, err := fsys.Open(dir + "/" + nefName)
	if err != nil {
		return Contract{}, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := fsys.Open(dir + "/" + manifestName)
	if err != nil {
		return Contract{}, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	return decode(fNEF, fManifest)
}

// ReadFiles reads contract from NEF and manifest files located anywhere in
// the local file system, e.g. produced by 'neo-go contract compile'.
func ReadFiles(nefPath, manifestPath string) (Contract, error) {
	fNEF, err := os.Open(nefPath)
	if err != nil {
		return Contract{}, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := os.Open(manifestPath)
	if err != nil {
		return Contract{}, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	return decode(fNEF, fManifest)
}

func decode(rNEF, rManifest io.Reader) (Contract, error) {
	var c Contract

	bReader := neoio.NewBinReaderFromIO(rNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidNEF, bReader.Err)
	}

	err := json.NewDecoder(rManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	return c, nil
}
