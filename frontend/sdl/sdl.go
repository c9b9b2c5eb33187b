// This file is part of citrine3ds.
//
// citrine3ds is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// citrine3ds is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with citrine3ds.  If not, see <https://www.gnu.org/licenses/>.

// Package sdl is an SDL2 front end for the runtime package: one
// window per 3DS screen, each with its own renderer and streaming
// texture, and keyboard input mapped onto the 3DS button bitmask.
package sdl

import (
	"fmt"

	"github.com/citrine3ds/citrine3ds/emulation"
	"github.com/citrine3ds/citrine3ds/runtime"
	"github.com/citrine3ds/citrine3ds/services"
	"github.com/veandco/go-sdl2/sdl"
)

const windowTitle = "citrine3ds"

// screen bundles the SDL objects backing one of the console's two
// physical displays.
type screen struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	width    int32
	height   int32
}

func newScreen(title string, width, height int32) (*screen, error) {
	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		width*2, height*2, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("sdl: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("sdl: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING, width, height)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("sdl: create texture: %w", err)
	}

	return &screen{window: window, renderer: renderer, texture: texture, width: width, height: height}, nil
}

func (s *screen) present(pixels []byte) {
	s.texture.Update(nil, pixels, int(s.width)*services.BytesPerPixel)
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

func (s *screen) destroy() {
	s.texture.Destroy()
	s.renderer.Destroy()
	s.window.Destroy()
}

// keymap associates host keys with 3DS button bits. Arrow keys are the
// d-pad; X/Z are A/B, S/A are X/Y, Q/W are L/R, Return is Start and
// right Shift is Select. There is no circle-pad mapping.
var keymap = map[sdl.Keycode]uint32{
	sdl.K_x:      services.ButtonA,
	sdl.K_z:      services.ButtonB,
	sdl.K_s:      services.ButtonX,
	sdl.K_a:      services.ButtonY,
	sdl.K_q:      services.ButtonL,
	sdl.K_w:      services.ButtonR,
	sdl.K_RETURN: services.ButtonStart,
	sdl.K_RSHIFT: services.ButtonSelect,
	sdl.K_UP:     services.ButtonDUp,
	sdl.K_DOWN:   services.ButtonDDown,
	sdl.K_LEFT:   services.ButtonDLeft,
	sdl.K_RIGHT:  services.ButtonDRight,
}

// Frontend drives a runtime.Emulator from an SDL2 window pair.
// NewFrontend and Service must be called from the main OS thread;
// each Service call also runs at most one func queued on the
// frontend's service channel there.
type Frontend struct {
	Emu *runtime.Emulator

	top    *screen
	bottom *screen

	service chan func()
	buttons uint32
	quit    bool
}

// NewFrontend initialises SDL and opens both screens. MUST be called
// from the main OS thread.
func NewFrontend(emu *runtime.Emulator) (*Frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl: init: %w", err)
	}

	top, err := newScreen(windowTitle+" - top", services.TopFBWidth, services.TopFBHeight)
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	bottom, err := newScreen(windowTitle+" - bottom", services.BotFBWidth, services.BotFBHeight)
	if err != nil {
		top.destroy()
		sdl.Quit()
		return nil, err
	}

	return &Frontend{
		Emu:     emu,
		top:     top,
		bottom:  bottom,
		service: make(chan func(), 1),
	}, nil
}

// Destroy releases every SDL resource the frontend owns.
func (f *Frontend) Destroy() {
	f.bottom.destroy()
	f.top.destroy()
	sdl.Quit()
}

// Service runs one iteration of the main-thread loop: drain a queued
// service call, drain pending SDL events, advance the emulator one
// frame, and present both screens. Draining the whole event queue
// each call (rather than one event per call, as a plain port of
// SdlPlay.Service would) keeps keyboard state from lagging behind
// RunFrame, which is only invoked once per Service call here.
func (f *Frontend) Service() {
	select {
	case fn := <-f.service:
		fn()
	default:
	}

	for {
		event := sdl.PollEvent()
		if event == nil {
			break
		}
		f.handleEvent(event)
	}

	f.Emu.SetButtons(f.buttons)
	f.Emu.RunFrame()

	f.top.present(f.Emu.GetFBTop())
	f.bottom.present(f.Emu.GetFBBottom())
}

// Quit reports whether a window-close event has been seen.
func (f *Frontend) Quit() bool {
	return f.quit
}

func (f *Frontend) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		f.quit = true
	case *sdl.KeyboardEvent:
		bit, ok := keymap[e.Keysym.Sym]
		if !ok {
			return
		}
		switch e.Type {
		case sdl.KEYDOWN:
			f.buttons |= bit
		case sdl.KEYUP:
			f.buttons &^= bit
		}
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_FOCUS_LOST:
			f.Emu.SetFeature(emulation.ReqSetPause, true)
		case sdl.WINDOWEVENT_FOCUS_GAINED:
			f.Emu.SetFeature(emulation.ReqSetPause, false)
		}
	}
}
