package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit so many workers can write at once.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось увеличить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// DefaultWorkers returns one less than the number of logical CPUs, at least 1.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	if n > 1 {
		n--
	}
	return n
}

// CheckMemory warns when the given files are larger than the available memory.
// It reports false when loading them would likely not fit.
func CheckMemory(paths ...string) bool {
	var total uint64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		total += uint64(info.Size())
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[!] Не удалось получить данные о памяти: %v", err)
		return true
	}

	fmt.Printf("[*] Массивы: %.1f MiB | Доступно памяти: %.1f MiB\n", mib(total), mib(vm.Available))
	if total > vm.Available {
		log.Printf("[!] Массивы (%.1f MiB) больше доступной памяти (%.1f MiB)", mib(total), mib(vm.Available))
		return false
	}
	return true
}

func mib(n uint64) float64 {
	return float64(n) / (1 << 20)
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
