package publish

// DefaultTag is the tag every built artifact carries.
const DefaultTag = "latest"

// Artifact is a built container image and the tags attached to it.
type Artifact struct {
	// Ref is the base image identifier without a tag.
	Ref string
	// Tags are the tags attached so far, in the order they were added.
	// Always starts with DefaultTag.
	Tags []string
}

// NewArtifact returns an artifact carrying the default tag.
func NewArtifact(ref string) *Artifact {
	return &Artifact{Ref: ref, Tags: []string{DefaultTag}}
}

// AddTag attaches a tag to the artifact.
func (a *Artifact) AddTag(tag string) {
	a.Tags = append(a.Tags, tag)
}

// TagRefs returns the fully qualified ref for every tag, in tag order.
func (a *Artifact) TagRefs() []string {
	refs := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		refs = append(refs, a.Ref+":"+tag)
	}
	return refs
}
