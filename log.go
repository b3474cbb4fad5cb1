/*
Copyright © 2026 the raster authors.
This file is part of raster.

raster is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

raster is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with raster.  If not, see <http://www.gnu.org/licenses/>.
*/

package raster

import "github.com/sirupsen/logrus"

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
}

// SetLogger replaces the logger used for debug-level progress reporting
// by the long-running kernels. The default is logrus.StandardLogger().
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger = l
	}
}
