package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceGuard holds the single-instance lock. While held, every later launch
// attempt is reported to the activation callback.
type InstanceGuard struct {
	listener net.Listener
	address  string
	done     chan struct{}
	once     sync.Once
}

// AcquireSingleInstance binds a localhost port derived from appName. If the
// port is taken, the running instance is asked to activate and
// ErrAlreadyRunning is returned.
func AcquireSingleInstance(appName string, onActivate func()) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		notifyRunning(address)
		return nil, ErrAlreadyRunning
	}

	guard := &InstanceGuard{
		listener: listener,
		address:  address,
		done:     make(chan struct{}),
	}
	go guard.accept(onActivate)
	return guard, nil
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	var err error
	guard.once.Do(func() {
		err = guard.listener.Close()
		<-guard.done
	})
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func (guard *InstanceGuard) accept(onActivate func()) {
	defer close(guard.done)
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		_ = conn.Close()
		if onActivate != nil {
			onActivate()
		}
	}
}

func notifyRunning(address string) {
	conn, err := net.DialTimeout("tcp", address, 500*time.Millisecond)
	if err != nil {
		return
	}
	_ = conn.Close()
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
