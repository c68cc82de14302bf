// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package ledger implements the deterministic state transition of the
// trust-graph ledger: fixed-capacity sorted neighbor sets and their MiMC
// commitments, edge operations with per-endpoint Merkle witnesses, batch
// application with root chaining, the canonical batch digests and the masked
// public input checked by the external proof verifier.
//
// The whole pipeline is a pure function (oldRoot, batch) -> (newRoot, pub0) or
// a validation error. A failing batch is simply unprovable; there is no
// partial application.
package ledger
