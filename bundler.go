// Package bundler discovers the on-chain scripts of a project, resolves their
// imports and cross references, and compiles them into a deployable bundle.
//
// A project is a tree of script files. Each file starts with a header naming
// its purpose and its logical name:
//
//	spending vault
//	minting oracle
//	staking pool
//	module utils
//	endpoint mint_nft
//
// Validators (spending, minting and staking scripts) may reference each
// other by name with Scripts::<name>. The bundler compiles the referenced
// validator first and substitutes its hash, so every validator sees the
// deployed hash of its siblings. A validator that references itself gets a
// runtime lookup of its own hash instead.
//
// # Basic Usage
//
// Discover a project, build a stage and pin the resulting hashes:
//
//	b, err := bundler.New(ctx, os.DirFS("."),
//	    bundler.WithLockStore(bundler.NewFileLockStore("helios-lock.json")),
//	    bundler.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	artifacts, err := b.Build(bundler.DefaultStage)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Persist the hashes of this build
//	if err := b.WriteLock(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Script Kinds
//
//   - Validators: compiled to bytecode and addressed on chain by hash. A
//     validator may declare positional parameters with param.
//
//   - Modules: libraries imported by other scripts with
//     import { A, B } from "./relative/path". Modules are never compiled on
//     their own.
//
//   - Endpoints: off-chain programs. They reference validators through a
//     compile macro evaluated at run time, so compiling an endpoint never
//     compiles a validator.
//
//   - Testing scripts: recognized and reported, never bundled.
//
// # Lock File
//
// The lock file maps validator names to the hash they were first built with.
// A build whose hash for a locked validator differs fails with a
// LockMismatchError. Builds record new entries in memory only; WriteLock
// persists them.
//
// # Stages
//
// The project configuration may declare several stages, each with include
// and exclude lists. Excluded validators are still compiled when an included
// one references them, but they are not emitted.
//
// # Compiler
//
// Compilation goes through the compiler.Compiler interface. The default
// backend is compiler/reference, which handles headers, imports, references
// and parameters, and produces deterministic artifacts.
package bundler
