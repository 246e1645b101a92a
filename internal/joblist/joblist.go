// Package joblist loads job postings from a YAML or JSON listing file.
package joblist

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/skillgap/internal/skillgap"
)

type Jobs struct {
	Items []*skillgap.Job
}

type listing struct {
	Jobs []posting `yaml:"jobs"`
}

// posting accepts both the short keys and the job_* keys of scraped
// listings.
type posting struct {
	Title          string        `yaml:"title"`
	JobTitle       string        `yaml:"job_title"`
	Company        string        `yaml:"company"`
	CompanyName    string        `yaml:"company_name"`
	Description    string        `yaml:"description"`
	JobDescription string        `yaml:"job_description"`
	Skills         []requirement `yaml:"skills"`
}

type requirement struct {
	Name          string  `yaml:"name"`
	RequiredLevel string  `yaml:"required_level"`
	Topics        []topic `yaml:"topics"`
}

// topic is either a plain string or an object with a topic key.
type topic string

func (t *topic) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = topic(node.Value)
		return nil
	}

	var obj struct {
		Topic string `yaml:"topic"`
	}
	if err := node.Decode(&obj); err != nil {
		return err
	}
	*t = topic(obj.Topic)
	return nil
}

// Load reads a listing file. JSON files are read as YAML.
func Load(path string) (*Jobs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job listing %s: %w", path, err)
	}

	jobs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("job listing %s: %w", path, err)
	}
	return jobs, nil
}

// Parse decodes a listing. Postings without a title are dropped and only the
// first posting of each title is kept, so indexes refer to unique titles.
func Parse(data []byte) (*Jobs, error) {
	var l listing
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode job listing: %w", err)
	}

	jobs := &Jobs{}
	seen := map[string]struct{}{}
	for _, p := range l.Jobs {
		job := p.toJob()
		if job.Title == "" {
			continue
		}
		if _, dup := seen[job.Title]; dup {
			continue
		}
		seen[job.Title] = struct{}{}
		jobs.Items = append(jobs.Items, job)
	}

	return jobs, nil
}

func (p posting) toJob() *skillgap.Job {
	job := &skillgap.Job{
		Title:       strings.TrimSpace(first(p.Title, p.JobTitle)),
		Company:     strings.TrimSpace(first(p.Company, p.CompanyName)),
		Description: strings.TrimSpace(first(p.Description, p.JobDescription)),
	}

	for _, s := range p.Skills {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		req := skillgap.JobRequirement{Name: name, RequiredLevel: strings.TrimSpace(s.RequiredLevel)}
		for _, t := range s.Topics {
			if v := strings.TrimSpace(string(t)); v != "" {
				req.Topics = append(req.Topics, v)
			}
		}
		job.Requirements = append(job.Requirements, req)
	}

	return job
}

func first(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) Titles() []string {
	titles := make([]string, 0, len(j.Items))
	for _, job := range j.Items {
		titles = append(titles, job.Title)
	}
	return titles
}

// ByIndex returns the job at index among unique titles.
func (j *Jobs) ByIndex(index int) (*skillgap.Job, error) {
	if index < 0 || index >= len(j.Items) {
		return nil, fmt.Errorf("job index %d out of range [0, %d)", index, len(j.Items))
	}
	return j.Items[index], nil
}

func (j *Jobs) FindByTitle(title string) *skillgap.Job {
	for _, job := range j.Items {
		if strings.EqualFold(job.Title, strings.TrimSpace(title)) {
			return job
		}
	}
	return nil
}

// Top returns at most n jobs in listing order.
func (j *Jobs) Top(n int) []*skillgap.Job {
	if n < 0 || n > len(j.Items) {
		n = len(j.Items)
	}
	return j.Items[:n]
}
