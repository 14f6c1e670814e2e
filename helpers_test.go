package bundler

import (
	"context"
	"testing"
	"testing/fstest"
)

// Fixture sources shared across tests. vault imports utils by relative path
// and references oracle by hash.
const (
	utilsSrc = `module utils

struct Owner {
	pkh: PubKeyHash
}

func is_owner(o: Owner, ctx: ScriptContext) -> Bool {
	ctx.tx.is_signed_by(o.pkh)
}`

	oracleSrc = `minting oracle

// one-shot oracle policy
func main(_, ctx: ScriptContext) -> Bool {
	ctx.tx.minted.is_zero()
}`

	vaultSrc = `spending vault

import { Owner, is_owner } from "./lib/utils"

func main(datum: Owner, _, ctx: ScriptContext) -> Bool {
	is_owner(datum, ctx) && ctx.tx.minted.get_policy(Scripts::oracle).is_zero()
}`

	mintEndpointSrc = `endpoint mint_nft

func main() -> Bool {
	Scripts::vault != #
}`
)

func fixtureFiles() map[string]string {
	return map[string]string{
		"contracts/lib/utils.hl":  utilsSrc,
		"contracts/oracle.hl":     oracleSrc,
		"contracts/vault.hl":      vaultSrc,
		"endpoints/mint_nft.hl":   mintEndpointSrc,
		"node_modules/dep/x.hl":   "spending ignored\nfunc main(_, _, _) -> Bool { true }",
		"contracts/README.md":     "not a script",
		"contracts/lib/extra.txt": "module nope",
	}
}

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for p, s := range files {
		fsys[p] = &fstest.MapFile{Data: []byte(s)}
	}
	return fsys
}

// newTestBundle builds a Bundle over files with an empty in-memory lock.
func newTestBundle(t *testing.T, files map[string]string, opts ...BundleOption) *Bundle {
	t.Helper()
	all := append([]BundleOption{WithLockStore(NewMemoryLockStore(nil))}, opts...)
	b, err := New(context.Background(), mapFS(files), all...)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return b
}

func validatorByName(t *testing.T, b *Bundle, name string) *ValidatorScript {
	t.Helper()
	v, ok := b.validators.Get(name)
	if !ok {
		t.Fatalf("Validator %s not found", name)
	}
	return v
}
