//go:build darwin

package permission

// #cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
// #include <ApplicationServices/ApplicationServices.h>
//
// static int clipkeep_trusted(int prompt) {
//     const void *keys[] = { kAXTrustedCheckOptionPrompt };
//     const void *values[] = { prompt ? kCFBooleanTrue : kCFBooleanFalse };
//     CFDictionaryRef opts = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
//         &kCFCopyStringDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
//     Boolean ok = AXIsProcessTrustedWithOptions(opts);
//     CFRelease(opts);
//     return ok ? 1 : 0;
// }
import "C"

// axChecker uses the macOS accessibility trust API.
type axChecker struct{}

func newPlatform() Checker { return axChecker{} }

func (axChecker) Granted() (bool, error) {
	return C.clipkeep_trusted(0) == 1, nil
}

// Request shows the system accessibility prompt. The OS owns the dialog.
func (axChecker) Request() error {
	C.clipkeep_trusted(1)
	return nil
}
