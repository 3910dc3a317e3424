// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package client talks to the provisioning portal's REST API. It attaches the
// stored bearer credential, encodes JSON or multipart bodies, and turns every
// non-2xx reply into an *Error whose Kind tells callers whether the
// credential was rejected.
package client
