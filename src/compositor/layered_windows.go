//go:build windows

package compositor

import (
	"fmt"
	"image"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	wsExLayered      = 0x00080000
	wsExTransparent  = 0x00000020
	wsExToolWindow   = 0x00000080
	wsExNoActivate   = 0x08000000
	ulwAlpha         = 0x00000002
	acSrcOver        = 0x00
	acSrcAlpha       = 0x01
	swShowNoActivate = 4
	swpNoSize        = 0x0001
	swpNoMove        = 0x0002
	swpNoActivate    = 0x0010
	htTransparent    = ^uintptr(0) // HTTRANSPARENT (-1)
)

var hwndTopmost = win.HWND(^uintptr(0))

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procUpdateLayeredWindow = user32.NewProc("UpdateLayeredWindow")
)

type blendFunction struct {
	BlendOp             byte
	BlendFlags          byte
	SourceConstantAlpha byte
	AlphaFormat         byte
}

var (
	classOnce sync.Once
	classErr  error
	className = syscall.StringToUTF16Ptr("AnyIndicatorOverlay")
)

func registerClass() error {
	classOnce.Do(func() {
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			LpfnWndProc:   syscall.NewCallback(overlayWndProc),
			HInstance:     win.GetModuleHandle(nil),
			LpszClassName: className,
		}
		if win.RegisterClassEx(&wc) == 0 {
			classErr = fmt.Errorf("failed to register overlay window class")
		}
	})
	return classErr
}

// overlayWndProc makes the window invisible to hit testing so clicks reach
// whatever is underneath.
func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	if msg == win.WM_NCHITTEST {
		return htTransparent
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

type layered struct {
	name  string
	hwnd  win.HWND
	shown bool
}

// New creates a borderless, topmost, click-through layered window that
// never takes focus and stays out of the task switcher. The calling
// goroutine must stay locked to its OS thread and call PumpMessages.
func New(name string) (Surface, error) {
	if err := registerClass(); err != nil {
		return nil, err
	}
	title, err := syscall.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("window title: %w", err)
	}
	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST|wsExLayered|wsExTransparent|wsExToolWindow|wsExNoActivate,
		className,
		title,
		win.WS_POPUP,
		0, 0, 1, 1,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("failed to create overlay window %q", name)
	}
	return &layered{name: name, hwnd: hwnd}, nil
}

func (l *layered) Present(frame *image.RGBA, at image.Point) error {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("empty frame")
	}

	screenDC := win.GetDC(0)
	if screenDC == 0 {
		return fmt.Errorf("GetDC failed")
	}
	defer win.ReleaseDC(0, screenDC)

	memDC := win.CreateCompatibleDC(screenDC)
	if memDC == 0 {
		return fmt.Errorf("CreateCompatibleDC failed")
	}
	defer win.DeleteDC(memDC)

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(w),
			BiHeight:      -int32(h), // top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}
	var bits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &bits, 0, 0)
	if hBitmap == 0 || bits == nil {
		return fmt.Errorf("CreateDIBSection failed")
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	old := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, old)

	// image.RGBA is premultiplied, which is what ULW_ALPHA wants; only the
	// channel order differs.
	dst := unsafe.Slice((*byte)(bits), w*h*4)
	for y := 0; y < h; y++ {
		src := frame.Pix[frame.PixOffset(b.Min.X, b.Min.Y+y):]
		row := dst[y*w*4:]
		for x := 0; x < w; x++ {
			i := x * 4
			row[i+0] = src[i+2]
			row[i+1] = src[i+1]
			row[i+2] = src[i+0]
			row[i+3] = src[i+3]
		}
	}

	pos := win.POINT{X: int32(at.X), Y: int32(at.Y)}
	size := win.SIZE{CX: int32(w), CY: int32(h)}
	var srcPos win.POINT
	blend := blendFunction{BlendOp: acSrcOver, SourceConstantAlpha: 255, AlphaFormat: acSrcAlpha}
	r, _, callErr := procUpdateLayeredWindow.Call(
		uintptr(l.hwnd),
		uintptr(screenDC),
		uintptr(unsafe.Pointer(&pos)),
		uintptr(unsafe.Pointer(&size)),
		uintptr(memDC),
		uintptr(unsafe.Pointer(&srcPos)),
		0,
		uintptr(unsafe.Pointer(&blend)),
		ulwAlpha,
	)
	if r == 0 {
		return fmt.Errorf("UpdateLayeredWindow %s: %w", l.name, callErr)
	}

	if !l.shown {
		win.ShowWindow(l.hwnd, swShowNoActivate)
		l.shown = true
	}
	// Other topmost windows may have been raised since the last frame.
	win.SetWindowPos(l.hwnd, hwndTopmost, 0, 0, 0, 0, swpNoMove|swpNoSize|swpNoActivate)
	return nil
}

func (l *layered) Close() error {
	if l.hwnd == 0 {
		return nil
	}
	ok := win.DestroyWindow(l.hwnd)
	l.hwnd = 0
	if !ok {
		return fmt.Errorf("DestroyWindow %s failed", l.name)
	}
	return nil
}

// PumpMessages drains the calling thread's message queue without blocking.
func PumpMessages() {
	var msg win.MSG
	for win.PeekMessage(&msg, 0, 0, 0, win.PM_REMOVE) {
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}
