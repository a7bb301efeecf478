package contracts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/stretchr/testify/require"
)

func TestReadMissingFiles(t *testing.T) {
	_fs := fstest.MapFS{}

	// Missing NEF
	_, err := Read(_fs, VaultDir)
	require.Error(t, err)

	// Missing manifest.
	_fs[VaultDir+"/"+nefName] = &fstest.MapFile{}
	_, err = Read(_fs, VaultDir)
	require.Error(t, err)
}

func TestReadInvalidFormat(t *testing.T) {
	var (
		_fs          = fstest.MapFS{}
		nefPath      = VaultDir + "/" + nefName
		manifestPath = VaultDir + "/" + manifestName
	)

	_nef, validNEF := anyValidNEF(t)
	_, validManifest := anyValidManifest(t, "ShareVault")

	_fs[nefPath] = &fstest.MapFile{Data: validNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: validManifest}

	c, err := Read(_fs, VaultDir)
	require.NoError(t, err)
	require.Equal(t, "ShareVault", c.Manifest.Name)
	require.Equal(t, _nef.Checksum, c.NEF.Checksum)

	_fs[nefPath] = &fstest.MapFile{Data: []byte("not a NEF")}
	_fs[manifestPath] = &fstest.MapFile{Data: validManifest}

	_, err = Read(_fs, VaultDir)
	require.ErrorIs(t, err, errInvalidNEF)

	_fs[nefPath] = &fstest.MapFile{Data: validNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: []byte("not a manifest")}

	_, err = Read(_fs, VaultDir)
	require.ErrorIs(t, err, errInvalidManifest)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	nefPath := filepath.Join(dir, "vault.nef")
	manifestPath := filepath.Join(dir, "vault.manifest.json")

	_, err := ReadFiles(nefPath, manifestPath)
	require.Error(t, err)

	_, validNEF := anyValidNEF(t)
	_, validManifest := anyValidManifest(t, "ShareVault")
	require.NoError(t, os.WriteFile(nefPath, validNEF, 0o600))
	require.NoError(t, os.WriteFile(manifestPath, validManifest, 0o600))

	c, err := ReadFiles(nefPath, manifestPath)
	require.NoError(t, err)
	require.Equal(t, "ShareVault", c.Manifest.Name)

	require.NoError(t, os.WriteFile(manifestPath, []byte("{"), 0o600))
	_, err = ReadFiles(nefPath, manifestPath)
	require.ErrorIs(t, err, errInvalidManifest)
}

func anyValidNEF(tb testing.TB) (nef.File, []byte) {
	script := make([]byte, 32)

	_nef, err := nef.NewFile(script)
	require.NoError(tb, err)

	bNEF, err := _nef.Bytes()
	require.NoError(tb, err)

	return *_nef, bNEF
}

func anyValidManifest(tb testing.TB, name string) (manifest.Manifest, []byte) {
	_manifest := manifest.NewManifest(name)

	jManifest, err := json.Marshal(_manifest)
	require.NoError(tb, err)

	return *_manifest, jManifest
}
