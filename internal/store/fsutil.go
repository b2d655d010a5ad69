package store

import (
	"os"
	"strconv"
)

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// fileStamp returns "<modnano>:<size>" for the given paths combined, or "" if none exist.
func fileStamp(paths ...string) string {
	var modNano, size int64
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			continue
		}
		if st.ModTime().UnixNano() > modNano {
			modNano = st.ModTime().UnixNano()
		}
		size += st.Size()
	}
	if modNano == 0 && size == 0 {
		return ""
	}
	return strconv.FormatInt(modNano, 10) + ":" + strconv.FormatInt(size, 10)
}
