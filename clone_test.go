package grip

import (
	"reflect"
	"testing"
)

func TestDeepCopyNil(t *testing.T) {
	if deepCopy[struct{}](nil) != nil {
		t.Error("deepCopy(nil) should be nil")
	}
}

func TestDeepCopyValueFields(t *testing.T) {
	type Config struct {
		Host  string
		Port  int
		Token Secret
	}

	src := &Config{Host: "db", Port: 5432, Token: NewSecret("t")}
	dst := deepCopy(src)

	if dst == src {
		t.Fatal("deepCopy should produce a distinct instance")
	}
	if !reflect.DeepEqual(src, dst) {
		t.Errorf("copy differs: %+v vs %+v", src, dst)
	}
}

func TestDeepCopyDetachesSlices(t *testing.T) {
	type Config struct {
		Hosts []string
	}

	src := &Config{Hosts: []string{"a", "b"}}
	dst := deepCopy(src)

	dst.Hosts[0] = "mutated"
	if src.Hosts[0] != "a" {
		t.Error("slice mutation leaked into the source")
	}
}

func TestDeepCopyDetachesMaps(t *testing.T) {
	type Config struct {
		Labels map[string]string
	}

	src := &Config{Labels: map[string]string{"env": "prod"}}
	dst := deepCopy(src)

	dst.Labels["env"] = "dev"
	if src.Labels["env"] != "prod" {
		t.Error("map mutation leaked into the source")
	}
}

func TestDeepCopyDetachesPointers(t *testing.T) {
	type Inner struct {
		N int
	}
	type Config struct {
		Inner *Inner
	}

	src := &Config{Inner: &Inner{N: 1}}
	dst := deepCopy(src)

	dst.Inner.N = 2
	if src.Inner.N != 1 {
		t.Error("pointer mutation leaked into the source")
	}
}

func TestDeepCopyNestedStructs(t *testing.T) {
	type Database struct {
		Hosts []string
	}
	type Config struct {
		Database Database
	}

	src := &Config{Database: Database{Hosts: []string{"a"}}}
	dst := deepCopy(src)

	dst.Database.Hosts[0] = "mutated"
	if src.Database.Hosts[0] != "a" {
		t.Error("nested slice mutation leaked into the source")
	}
}

func TestDeepCopyNilReferences(t *testing.T) {
	type Config struct {
		Hosts  []string
		Labels map[string]string
		Next   *Config
	}

	src := &Config{}
	dst := deepCopy(src)

	if dst.Hosts != nil || dst.Labels != nil || dst.Next != nil {
		t.Errorf("nil references should stay nil: %+v", dst)
	}
}
