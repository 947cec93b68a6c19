// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package hostguard keeps an HTTP client away from cloud instance metadata services
// and other link-local endpoints.
// Every outgoing request, and every redirect hop, is checked before a connection is made:
// the destination host is matched against a denylist of metadata host names,
// and the addresses it resolves to are rejected if any of them is link-local.
package hostguard
