// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package canvas

type ScreenFactoryer = screenFactoryer

// SetScreenFactory allows to mock up tcell's screen generation for
// error handling testing.  Provided factory instance must implement
// NewScreen() (tcell.Screen, error)
// NewSimulationScreen(string) tcell.SimulationScreen
func SetScreenFactory(f ScreenFactoryer) {
	screenFactory = f
}

func DefaultScreenFactory() ScreenFactoryer {
	return &defaultFactory{}
}

// Owner returns the owner of the cell at given position.
func Owner(c *Canvas, x, y int) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	w, _ := c.lib.Size()
	o, ok := c.owner[y*w+x]
	return string(o), ok
}
