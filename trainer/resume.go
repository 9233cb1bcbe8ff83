package trainer

import "fmt"
import "os"
import "path/filepath"
import "sort"
import "strconv"
import "strings"

import "github.com/neurlang/fetalheart/net/feedforward"

const checkpointPrefix = "checkpoint_"
const checkpointSuffix = ".json.lzw"

// CheckpointName returns the file name of the checkpoint after epoch (1-based)
func CheckpointName(dir string, epoch int) string {
	return filepath.Join(dir, fmt.Sprintf("%s%04d%s", checkpointPrefix, epoch, checkpointSuffix))
}

// Checkpoint writes the network after epoch into dir
func Checkpoint(net *feedforward.FeedforwardNetwork, dir string, epoch int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return net.WriteCompressedToFile(CheckpointName(dir, epoch))
}

// LatestCheckpoint finds the checkpoint of the highest epoch in dir; 0 when there is none
func LatestCheckpoint(dir string) (epoch int, name string, err error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", err
	}
	var epochs []int
	for _, e := range entries {
		n := e.Name()
		if !strings.HasPrefix(n, checkpointPrefix) || !strings.HasSuffix(n, checkpointSuffix) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(n, checkpointPrefix), checkpointSuffix))
		if err != nil {
			continue
		}
		epochs = append(epochs, num)
	}
	if len(epochs) == 0 {
		return 0, "", nil
	}
	sort.Ints(epochs)
	epoch = epochs[len(epochs)-1]
	return epoch, CheckpointName(dir, epoch), nil
}

// Resume loads the weights of the latest checkpoint in dir into net and
// returns the number of epochs already trained. Momentum is not restored.
func Resume(net *feedforward.FeedforwardNetwork, dir string) (int, error) {
	epoch, name, err := LatestCheckpoint(dir)
	if err != nil || epoch == 0 {
		return 0, err
	}
	if err := net.ReadCompressedWeightsFromFile(name); err != nil {
		return 0, fmt.Errorf("resume from %s: %w", name, err)
	}
	return epoch, nil
}
