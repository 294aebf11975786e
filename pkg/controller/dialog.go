package controller

import (
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/imagedata"
)

// DialogKind says what an open dialog edits.
type DialogKind string

const (
	DialogNode DialogKind = "node"
	DialogEdge DialogKind = "edge"
)

// Field names accepted by [Controller.SetField].
const (
	FieldLabel            = "label"
	FieldComment          = "comment"
	FieldUploading        = "uploading"
	FieldImage            = "image"
	FieldDesignType       = "design.type"
	FieldDesignDifficulty = "design.difficulty"
	FieldCodingType       = "coding.type"
	FieldCodingDifficulty = "coding.difficulty"
)

// NodeFields lists the editable node fields in form order.
var NodeFields = []string{
	FieldLabel, FieldComment, FieldUploading,
	FieldDesignType, FieldDesignDifficulty,
	FieldCodingType, FieldCodingDifficulty,
	FieldImage,
}

// Dialog is an open edit form.
//
// Node dialogs edit a draft copy of the node data; nothing reaches the store
// until Commit. Edge dialogs edit only the comment.
type Dialog struct {
	Session  uint64         `json:"session"`
	Kind     DialogKind     `json:"kind"`
	TargetID string         `json:"target_id"`
	Node     graph.NodeData `json:"node"`
	Comment  string         `json:"comment,omitempty"`
}

// Dialog returns a copy of the open dialog, or false when none is open.
func (c *Controller) Dialog() (Dialog, bool) {
	if c.dialog == nil {
		return Dialog{}, false
	}
	return *c.dialog, true
}

// NodeDoubleClick opens the node dialog for id, replacing any open dialog.
func (c *Controller) NodeDoubleClick(id string) (Dialog, error) {
	n, ok := c.store.Node(id)
	if !ok {
		return Dialog{}, errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	c.openDialog(&Dialog{Kind: DialogNode, TargetID: id, Node: n.Data})
	return *c.dialog, nil
}

// EdgeDoubleClick opens the comment dialog for edge id.
func (c *Controller) EdgeDoubleClick(id string) (Dialog, error) {
	e, ok := c.store.Edge(id)
	if !ok {
		return Dialog{}, errors.New(errors.ErrCodeNotFound, "edge %s not found", id)
	}
	c.openDialog(&Dialog{Kind: DialogEdge, TargetID: id, Comment: e.Comment})
	return *c.dialog, nil
}

func (c *Controller) openDialog(d *Dialog) {
	c.sessions++
	d.Session = c.sessions
	c.dialog = d
}

func (c *Controller) closeDialog() { c.dialog = nil }

// SetField updates one field of the open dialog's draft.
//
// Values are validated here: the dialog layer passes raw strings through.
func (c *Controller) SetField(field, value string) error {
	d := c.dialog
	if d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no dialog open")
	}
	if d.Kind == DialogEdge {
		if field != FieldComment {
			return errors.New(errors.ErrCodeInvalidInput, "edge dialog has no field %q", field)
		}
		if err := errors.ValidateText(field, value); err != nil {
			return err
		}
		d.Comment = value
		return nil
	}
	return setNodeField(&d.Node, field, value)
}

func setNodeField(data *graph.NodeData, field, value string) error {
	switch field {
	case FieldLabel, FieldComment:
		if err := errors.ValidateText(field, value); err != nil {
			return err
		}
		if field == FieldLabel {
			data.Label = value
		} else {
			data.Comment = value
		}
	case FieldUploading:
		u := graph.Uploading(value)
		if !u.Valid() {
			return invalidEnum(field, value)
		}
		data.Uploading = u
	case FieldDesignType, FieldCodingType:
		t := graph.WorkType(value)
		if !t.Valid() {
			return invalidEnum(field, value)
		}
		if field == FieldDesignType {
			data.Design.Type = t
		} else {
			data.Coding.Type = t
		}
	case FieldDesignDifficulty, FieldCodingDifficulty:
		d := graph.Difficulty(value)
		if !d.Valid() {
			return invalidEnum(field, value)
		}
		if field == FieldDesignDifficulty {
			data.Design.Difficulty = d
		} else {
			data.Coding.Difficulty = d
		}
	case FieldImage:
		if value != "" {
			if _, err := imagedata.Parse(value); err != nil {
				return err
			}
		}
		data.Image = value
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown field %q", field)
	}
	return nil
}

func invalidEnum(field, value string) error {
	return errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", field, value)
}

// ValidateNodeData checks every field of a full data record.
func ValidateNodeData(d graph.NodeData) error {
	if err := errors.ValidateText(FieldLabel, d.Label); err != nil {
		return err
	}
	if err := errors.ValidateText(FieldComment, d.Comment); err != nil {
		return err
	}
	switch {
	case !d.Uploading.Valid():
		return invalidEnum(FieldUploading, string(d.Uploading))
	case !d.Design.Type.Valid():
		return invalidEnum(FieldDesignType, string(d.Design.Type))
	case !d.Design.Difficulty.Valid():
		return invalidEnum(FieldDesignDifficulty, string(d.Design.Difficulty))
	case !d.Coding.Type.Valid():
		return invalidEnum(FieldCodingType, string(d.Coding.Type))
	case !d.Coding.Difficulty.Valid():
		return invalidEnum(FieldCodingDifficulty, string(d.Coding.Difficulty))
	}
	if d.Image != "" {
		if _, err := imagedata.Parse(d.Image); err != nil {
			return err
		}
	}
	return nil
}

// Commit writes the draft to the store and closes the dialog.
// If the target was removed while the dialog was open, the dialog is closed
// and a NOT_FOUND error is returned.
func (c *Controller) Commit() error {
	d := c.dialog
	if d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no dialog open")
	}
	c.closeDialog()

	var ok bool
	switch d.Kind {
	case DialogNode:
		ok = c.store.UpdateNodeData(d.TargetID, d.Node)
	case DialogEdge:
		ok = c.store.SetEdgeComment(d.TargetID, d.Comment)
	}
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "%s %s no longer exists", d.Kind, d.TargetID)
	}
	c.logger.Debug("dialog committed", "kind", d.Kind, "target", d.TargetID, "session", d.Session)
	return nil
}

// Cancel discards the draft and closes the dialog.
func (c *Controller) Cancel() { c.closeDialog() }
