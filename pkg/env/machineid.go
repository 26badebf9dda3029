package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// FallbackID is used when the machine ID is unavailable.
const FallbackID = "softuart"

const idLength = 12

// MachineID derives a stable device ID from the machine ID.
func MachineID() string {
	id, err := machineid.ProtectedID("softuart")
	if err != nil {
		glog.Warningf("machine id unavailable, using %q: %v", FallbackID, err)
		return FallbackID
	}
	if len(id) > idLength {
		id = id[:idLength]
	}
	return id
}
