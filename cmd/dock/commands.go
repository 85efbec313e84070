package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tikz/dock"
	"github.com/tikz/dock/engine"
	"github.com/tikz/dock/grid"
	"github.com/tikz/dock/pdbqt"
	"github.com/tikz/dock/result"
)

func newRunCmd(opts *options) *cobra.Command {
	var (
		receptorPath string
		ligandPath   string
		outPath      string

		center  []float64
		size    []float64
		residue string

		exhaustiveness int
		numModes       int
		energyRange    float64
		seed           int64
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dock a ligand against a receptor and print ranked poses",
		RunE: func(cmd *cobra.Command, args []string) error {
			receptor, err := os.ReadFile(receptorPath)
			if err != nil {
				return err
			}
			ligand, err := os.ReadFile(ligandPath)
			if err != nil {
				return err
			}

			log, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			job := engine.Job{
				Receptor: string(receptor),
				Ligand:   string(ligand),
				Timeout:  timeout,
				Params: engine.SearchParams{
					Exhaustiveness: exhaustiveness,
					NumModes:       numModes,
					EnergyRange:    energyRange,
				},
			}
			if cmd.Flags().Changed("seed") {
				job.Params.Seed = &seed
			}

			switch {
			case len(center) == 3 && len(size) == 3:
				job.Box = grid.Box{
					Center: r3.Vec{X: center[0], Y: center[1], Z: center[2]},
					Size:   r3.Vec{X: size[0], Y: size[1], Z: size[2]},
				}
			case residue != "":
				prepared, err := dock.PrepareReceptor(string(receptor))
				if err != nil {
					return err
				}
				box, count, err := grid.ResidueCenteredBox(pdbqt.ParseAtoms(prepared), residue, 8)
				if err != nil {
					return err
				}
				fmt.Printf("residue box from %d atoms\n", count)
				job.Box = box
			}

			p := dock.New(opts.engineCfg, log)
			res, err := p.Dock(job)
			if err != nil {
				return err
			}

			printPoses(res)

			if outPath != "" {
				return os.WriteFile(outPath, []byte(res.RawOutput), 0644)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&receptorPath, "receptor", "r", "", "receptor file (PDB or PDBQT)")
	f.StringVarP(&ligandPath, "ligand", "l", "", "ligand file (PDB or PDBQT)")
	f.StringVarP(&outPath, "out", "o", "", "write raw pose output to file")
	f.Float64SliceVar(&center, "center", nil, "box center x,y,z")
	f.Float64SliceVar(&size, "size", nil, "box size x,y,z")
	f.StringVar(&residue, "residues", "", "center box on residues, e.g. HIS57,SER195")
	f.IntVar(&exhaustiveness, "exhaustiveness", 8, "search exhaustiveness")
	f.IntVar(&numModes, "num-modes", 9, "maximum binding modes")
	f.Float64Var(&energyRange, "energy-range", 3.0, "energy range (kcal/mol)")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.DurationVar(&timeout, "timeout", 0, "wall clock limit for the run")

	cmd.MarkFlagRequired("receptor")
	cmd.MarkFlagRequired("ligand")

	return cmd
}

func newConvertCmd() *cobra.Command {
	var keepHet bool

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a PDB file to docking format on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			text := string(raw)
			if !keepHet {
				text = pdbqt.KeepPolymer(text)
			}

			fmt.Print(pdbqt.Convert(text))
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepHet, "keep-het", false, "keep non-polymer residues")
	return cmd
}

func newPocketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pocket <file>",
		Short: "Suggest search boxes for a receptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			atoms := pdbqt.ParseAtoms(string(raw))
			if pocket := grid.DetectPocket(atoms); pocket != nil {
				printBox(fmt.Sprintf("%s (confidence %.2f)", pocket.Label, pocket.Confidence), pocket.Box)
			}
			for _, site := range grid.Sites(string(raw), atoms) {
				printBox(site.Name+", "+site.Description, site.Box)
			}
			printBox("blind", grid.BlindBox(atoms, 10))
			return nil
		},
	}
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Report the docking engine version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			c := engine.NewController(opts.engineCfg, nil)
			version, err := c.Version(ctx)
			if err != nil {
				return err
			}

			fmt.Println(version)
			return nil
		},
	}
}

func printPoses(res *result.Result) {
	fmt.Printf("%-5s %-12s %-10s %-10s\n", "mode", "affinity", "rmsd l.b.", "rmsd u.b.")
	for _, pose := range res.Poses {
		fmt.Printf("%-5d %-12.2f %-10.2f %-10.2f\n",
			pose.Mode, pose.Affinity, pose.RMSDLower, pose.RMSDUpper)
	}
}

func printBox(name string, box grid.Box) {
	fmt.Printf("%s\n  center %.2f %.2f %.2f  size %.2f %.2f %.2f\n",
		name, box.Center.X, box.Center.Y, box.Center.Z,
		box.Size.X, box.Size.Y, box.Size.Z)
}
