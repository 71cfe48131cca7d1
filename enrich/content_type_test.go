package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mcpnvidia/search"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		title string
		want  search.ContentType
	}{
		{"on demand session", "https://www.nvidia.com/en-us/on-demand/session/gtc24-s62400/", "Accelerating LLM Inference", search.ContentVideo},
		{"dli course", "https://courses.nvidia.com/courses/course-v1:DLI+S-FX-01+V1/", "Getting Started with Deep Learning", search.ContentCourse},
		{"research publication", "https://research.nvidia.com/publication/2024-06_neural-rendering", "Neural Rendering", search.ContentResearchPaper},
		{"forum thread", "https://forums.developer.nvidia.com/t/cuda-install-fails/28001", "CUDA install fails", search.ContentForumDiscussion},
		{"announcement", "https://blogs.nvidia.com/blog/blackwell/", "NVIDIA Unveils Blackwell Platform", search.ContentAnnouncement},
		{"news", "https://nvidianews.nvidia.com/news/q3-results", "Financial Results for Third Quarter", search.ContentNews},
		{"tutorial", "https://developer.nvidia.com/blog/how-to-profile/", "How to Profile CUDA Applications", search.ContentTutorial},
		{"guide", "https://docs.nvidia.com/deeplearning/performance/index.html", "Deep Learning Performance Guide", search.ContentGuide},
		{"documentation", "https://docs.nvidia.com/cuda/cuda-runtime-api/index.html", "CUDA Runtime API", search.ContentDocumentation},
		{"blog", "https://developer.nvidia.com/blog/cuda-12-features/", "CUDA 12 Features Revealed", search.ContentBlogPost},
		{"default", "https://www.nvidia.com/en-us/geforce/", "GeForce Graphics Cards", search.ContentArticle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(urlSignals(tt.url, tt.title)))
		})
	}
}

func TestClassify_PageSignals(t *testing.T) {
	assert.Equal(t, search.ContentVideo, classify(signals{ogType: "video.other"}))
	assert.Equal(t, search.ContentVideo, classify(signals{hasVideo: true, title: "keynote replay"}))
	assert.Equal(t, search.ContentTutorial, classify(signals{headings: "overview\nprerequisites\n"}))
	assert.Equal(t, search.ContentArticle, classify(signals{hasVideo: true, title: "gpu architecture"}))
}
