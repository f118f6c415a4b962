// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gateway

// SetUpgraded sets the function called between the upgrade of a
// connection and the registration of its session.
func SetUpgraded(s *Server, f func()) { s.upgraded = f }
