//go:build darwin

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
// #include <stdlib.h>
//
// NSInteger clipkeep_changeCount() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
//
// char* clipkeep_readFiles() {
//     @autoreleasepool {
//         NSArray *urls = [[NSPasteboard generalPasteboard]
//             readObjectsForClasses:@[[NSURL class]]
//             options:@{NSPasteboardURLReadingFileURLsOnlyKey: @YES}];
//         if (urls == nil || [urls count] == 0) {
//             return NULL;
//         }
//         NSMutableArray *paths = [NSMutableArray arrayWithCapacity:[urls count]];
//         for (NSURL *u in urls) {
//             [paths addObject:[u path]];
//         }
//         return strdup([[paths componentsJoinedByString:@"\n"] UTF8String]);
//     }
// }
//
// int clipkeep_writeFiles(const char *joined) {
//     @autoreleasepool {
//         NSString *s = [NSString stringWithUTF8String:joined];
//         NSMutableArray *urls = [NSMutableArray array];
//         for (NSString *p in [s componentsSeparatedByString:@"\n"]) {
//             if ([p length] > 0) {
//                 [urls addObject:[NSURL fileURLWithPath:p]];
//             }
//         }
//         NSPasteboard *pb = [NSPasteboard generalPasteboard];
//         [pb clearContents];
//         return [pb writeObjects:urls] ? 1 : 0;
//     }
// }
import "C"

import (
	"errors"
	"strings"
	"unsafe"
)

const (
	systemName           = "macOS NSPasteboard"
	hasNativeChangeCount = true
)

func nativeChangeCount() (uint64, bool) {
	return uint64(C.clipkeep_changeCount()), true
}

func readFiles() ([]string, error) {
	cs := C.clipkeep_readFiles()
	if cs == nil {
		return nil, nil
	}
	defer C.free(unsafe.Pointer(cs))
	return strings.Split(C.GoString(cs), "\n"), nil
}

func writeFiles(paths []string) error {
	if len(paths) == 0 {
		return errors.New("write files: empty path list")
	}
	cs := C.CString(strings.Join(paths, "\n"))
	defer C.free(unsafe.Pointer(cs))
	if C.clipkeep_writeFiles(cs) == 0 {
		return errors.New("write files: pasteboard rejected file URLs")
	}
	return nil
}
