/*
Copyright © 2024 the RuNeVis authors.
This file is part of RuNeVis.

RuNeVis is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RuNeVis is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RuNeVis.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package runevis computes reductions (mean, sum, minimum and maximum)
// of labeled multi-dimensional arrays along a named dimension.
//
// Variables are read through the VariableSource interface, loaded into
// an NDArray, and folded along one axis by an Executor, a fixed pool of
// worker goroutines. Non-finite values are skipped by every reduction.
// A Result can be written to a new dataset through a DatasetSink.
package runevis

// Name is the program name recorded in output provenance.
const Name = "RuNeVis"

// Version gives the version number.
const Version = "0.4.0"
