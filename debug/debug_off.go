// Copyright 2024-2025 The zkGraf Authors
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

//go:build !debug

package debug

// Debug is true only when the binary is built with the debug tag.
const Debug = false
