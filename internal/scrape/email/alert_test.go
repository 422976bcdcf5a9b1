package email

import "testing"

const alertFixture = `
<html><body>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/4012345678/?trk=alert"><img src="logo.png"></a>
  </td></tr>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/4012345678/?refId=abc">Senior Data Engineer</a>
    <p>Acme Corp · New York, NY (Remote)</p>
    <p>$140,000 - $180,000/year Actively recruiting</p>
    <p>3 days ago</p>
  </td></tr>
</table>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/jobs/view/4098765432/">Analytics Engineer</a>
    <p>Beta Labs · Brooklyn, NY</p>
  </td></tr>
</table>
<a href="https://www.linkedin.com/jobs/search/">See all jobs</a>
</body></html>`

func TestParseAlertHTML(t *testing.T) {
	jobs, err := parseAlertHTML(alertFixture)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("want 2 jobs, got %d: %+v", len(jobs), jobs)
	}

	byTitle := map[string]alertJob{}
	for _, j := range jobs {
		byTitle[j.Title] = j
	}

	senior, ok := byTitle["Senior Data Engineer"]
	if !ok {
		t.Fatalf("senior card missing (logo anchor must not shadow it): %+v", jobs)
	}
	if senior.Company != "Acme Corp" {
		t.Errorf("company = %q", senior.Company)
	}
	if senior.Location != "New York, NY (Remote)" {
		t.Errorf("location = %q", senior.Location)
	}
	if senior.Salary == "" {
		t.Errorf("salary not captured from card text")
	}
	if senior.Posted != "3 days ago" {
		t.Errorf("posted = %q", senior.Posted)
	}

	if _, ok := byTitle["Analytics Engineer"]; !ok {
		t.Errorf("second card missing: %+v", jobs)
	}
	if _, ok := byTitle["See all jobs"]; ok {
		t.Error("non-job link parsed as a card")
	}
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct{ in, want string }{
		{
			"https://t.example/track?url=https%3A%2F%2Fwww.linkedin.com%2Fjobs%2Fview%2F123",
			"https://www.linkedin.com/jobs/view/123",
		},
		{
			"https://www.google.com/url?q=https://www.linkedin.com/jobs/view/456",
			"https://www.linkedin.com/jobs/view/456",
		},
		{
			"https://www.linkedin.com/jobs/view/789",
			"https://www.linkedin.com/jobs/view/789",
		},
	}
	for _, tc := range tests {
		if got := unwrapRedirect(tc.in); got != tc.want {
			t.Errorf("unwrapRedirect(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripAlertJunk(t *testing.T) {
	if got := stripAlertJunk("Senior Engineer Easy Apply"); got != "Senior Engineer" {
		t.Errorf("got %q", got)
	}
	if got := stripAlertJunk("3 connections work here"); got != "" {
		t.Errorf("social line should be dropped, got %q", got)
	}
}
