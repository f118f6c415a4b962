// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package canvas

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// ErrScreen is returned if tcell fails to create a terminal screen.
var ErrScreen = errors.New("canvas: can't create screen")

// ErrInit is returned if tcell fails to initialize a created screen.
var ErrInit = errors.New("canvas: can't initialize screen")

// screenFactory is used to create new tcell-screens for production or
// for simulation.  export_test.go makes it possible to replace this
// screen factory with a screen-factory mocking up tcell's screen
// creation errors so they can be tested.
var screenFactory screenFactoryer = &defaultFactory{}

type defaultFactory struct{}

func (f *defaultFactory) NewScreen() (tcell.Screen, error) {
	return tcell.NewScreen()
}

func (f *defaultFactory) NewSimulationScreen(
	s string,
) tcell.SimulationScreen {
	return tcell.NewSimulationScreen(s)
}

type screenFactoryer interface {
	NewScreen() (tcell.Screen, error)
	NewSimulationScreen(string) tcell.SimulationScreen
}

func terminalScreen() (tcell.Screen, error) {
	lib, err := screenFactory.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreen, err)
	}
	if err := lib.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	lib.EnableFocus()
	return lib, nil
}

func simulationScreen() (tcell.SimulationScreen, error) {
	lib := screenFactory.NewSimulationScreen("UTF-8")
	if err := lib.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	return lib, nil
}
