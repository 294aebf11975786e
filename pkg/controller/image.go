package controller

import (
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/imagedata"
)

// ImageTarget identifies where a decoded image should land. It is captured
// when the image is requested, never when decoding finishes.
//
// A zero Session targets the node directly; otherwise the image goes into
// the draft of that dialog session. Generation identifies the loaded
// document; [Controller.RequestImage] fills it in.
type ImageTarget struct {
	NodeID     string
	Session    uint64
	Generation uint64
}

// ImageJob decodes one pasted or uploaded image.
type ImageJob struct {
	Target ImageTarget
	data   []byte
}

// ImageResult is the outcome of an ImageJob.
type ImageResult struct {
	Target ImageTarget
	URI    string
	Err    error
}

// CurrentImageTarget returns the target a paste should go to right now: the
// open node dialog if there is one, else the selected node.
func (c *Controller) CurrentImageTarget() (ImageTarget, bool) {
	if d := c.dialog; d != nil && d.Kind == DialogNode {
		return ImageTarget{NodeID: d.TargetID, Session: d.Session}, true
	}
	if c.selected != "" && c.store.HasNode(c.selected) {
		return ImageTarget{NodeID: c.selected}, true
	}
	return ImageTarget{}, false
}

// RequestImage prepares a decode job for target, stamped with the current
// document generation. The job holds its own copy of data.
func (c *Controller) RequestImage(target ImageTarget, data []byte) ImageJob {
	target.Generation = c.loads
	return ImageJob{Target: target, data: append([]byte(nil), data...)}
}

// Run decodes synchronously. It does not touch the controller.
func (j ImageJob) Run() ImageResult {
	uri, err := imagedata.FromBytes(j.data)
	return ImageResult{Target: j.Target, URI: uri, Err: err}
}

// Start decodes on a new goroutine. The result must be handed back to
// [Controller.CompleteImage] on the goroutine that owns the controller.
func (j ImageJob) Start() <-chan ImageResult {
	ch := make(chan ImageResult, 1)
	go func() { ch <- j.Run() }()
	return ch
}

// CompleteImage applies a finished decode if its target is still valid.
//
// Results requested before the current document was loaded are dropped.
// Dialog targets need the same session to still be open; direct targets need
// the node to still exist. Stale results are dropped and applied is false.
// A decode failure leaves the image unset and is returned as err.
func (c *Controller) CompleteImage(res ImageResult) (applied bool, err error) {
	if res.Err != nil {
		c.logger.Warn("image decode failed", "node", res.Target.NodeID, "err", res.Err)
		return false, res.Err
	}

	t := res.Target
	if t.Generation != c.loads {
		c.logger.Debug("dropping image for replaced document", "node", t.NodeID)
		return false, nil
	}
	if t.Session != 0 {
		d := c.dialog
		if d == nil || d.Session != t.Session || d.TargetID != t.NodeID {
			c.logger.Debug("dropping stale image", "node", t.NodeID, "session", t.Session)
			return false, nil
		}
		d.Node.Image = res.URI
		return true, nil
	}

	n, ok := c.store.Node(t.NodeID)
	if !ok {
		c.logger.Debug("dropping image for removed node", "node", t.NodeID)
		return false, nil
	}
	n.Data.Image = res.URI
	if !c.store.UpdateNodeData(n.ID, n.Data) {
		return false, errors.New(errors.ErrCodeInternal, "node %s vanished", n.ID)
	}
	return true, nil
}

// ClearImage removes the image of node id.
func (c *Controller) ClearImage(id string) error {
	n, ok := c.store.Node(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	n.Data.Image = ""
	c.store.UpdateNodeData(id, n.Data)
	return nil
}
