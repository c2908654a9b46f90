package oop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rubyDog = `require 'set'
require_relative 'animal'

class Dog < Animal
  attr_accessor :nickname

  def initialize(name)
    @name = name
    @tricks = []
  end

  def to_s
    @name
  end

  def train(list)
    list.each do |t|
      3.times { |i| puts i }
    end
  end

  def self.build
    new("rex")
  end
end
`

func TestRubyAnalyzer_Class(t *testing.T) {
	t.Parallel()

	report := newRubyAnalyzer().Analyze("lib/dog.rb", []byte(rubyDog))

	require.True(t, report.SyntaxOK)
	assert.Equal(t, "Ruby", report.Language)
	assert.Equal(t, []string{"set", "animal"}, report.Imports)
	require.Len(t, report.Classes, 1)

	dog := report.Classes[0]
	assert.Equal(t, "Dog", dog.Name)
	assert.Equal(t, []string{"Animal"}, dog.Bases)
	assert.Equal(t, []string{"to_s", "train", "build"}, dog.Methods)
	assert.True(t, dog.HasConstructor)
	assert.Equal(t, []string{"to_s"}, dog.SpecialMethods)
	assert.Equal(t, []string{"name", "tricks"}, dog.PrivateAttrs)
	assert.Equal(t, []string{"nickname"}, dog.PublicAttrs)
}

func TestRubyAnalyzer_IteratorBlocksCountAsLoops(t *testing.T) {
	t.Parallel()

	report := newRubyAnalyzer().Analyze("dog.rb", []byte(rubyDog))

	assert.Equal(t, 4, report.Complexity.TotalFunctions)
	assert.Equal(t, 1, report.Complexity.FunctionsWithNestedLoops)
	assert.Equal(t, 2, report.Complexity.MaxLoopDepth)
	assert.Equal(t, 1, report.DataStructures.ListCount)
}

func TestRubyAnalyzer_SyntaxError(t *testing.T) {
	t.Parallel()

	report := newRubyAnalyzer().Analyze("bad.rb", []byte("class Broken\n  def x(\nend\n"))

	assert.False(t, report.SyntaxOK)
	assert.Empty(t, report.Classes)
}
