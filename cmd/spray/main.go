/*
Copyright © 2026 the InMAP authors.
This file is part of Spray.

Spray is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Spray is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Spray.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command spray is a command-line interface for the spray parcel
// injection model.
package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/spray/sprayutil"
)

func main() {
	if err := sprayutil.Root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
